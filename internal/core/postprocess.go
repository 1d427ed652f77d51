package core

import (
	"fmt"
	"math"
	"time"

	"snake-backend/internal/core/types"
)

// Resolve picks the most probable label. Exact ties go to the lowest index.
func Resolve(probabilities []float32, labels LabelSet, at time.Time) (types.Prediction, error) {
	if len(probabilities) == 0 || len(probabilities) != labels.Len() {
		return types.Prediction{}, fmt.Errorf("%w: got %d values for %d labels", ErrEmptyVector, len(probabilities), labels.Len())
	}

	best := 0
	for i, p := range probabilities {
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			return types.Prediction{}, fmt.Errorf("%w: non-finite probability at index %d", ErrInference, i)
		}
		if p > probabilities[best] {
			best = i
		}
	}

	return types.Prediction{
		Label:      labels.At(best),
		Confidence: ConfidencePercent(probabilities[best]),
		Timestamp:  at,
	}, nil
}

// ConfidencePercent converts a probability to a percentage rounded to two
// decimals, halves rounded away from zero.
func ConfidencePercent(p float32) float64 {
	return math.Round(float64(p)*100*100) / 100
}
