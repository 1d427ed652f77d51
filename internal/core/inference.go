package core

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"snake-backend/internal/core/types"
)

// Predictor runs the normalize -> classify -> resolve pipeline for one image.
type Predictor struct {
	normalizer *Normalizer
	classifier Classifier
	labels     LabelSet
	now        func() time.Time
}

func NewPredictor(normalizer *Normalizer, classifier Classifier, labels LabelSet) (*Predictor, error) {
	if !types.SameShape(normalizer.OutputShape(), classifier.InputShape()) {
		return nil, fmt.Errorf("%w: normalizer produces %v but classifier expects %v", ErrShapeMismatch, normalizer.OutputShape(), classifier.InputShape())
	}

	return &Predictor{
		normalizer: normalizer,
		classifier: classifier,
		labels:     labels,
		now:        time.Now,
	}, nil
}

// WithClock replaces the timestamp source.
func (p *Predictor) WithClock(now func() time.Time) *Predictor {
	p.now = now
	return p
}

func (p *Predictor) Labels() LabelSet {
	return p.labels
}

func (p *Predictor) Predict(data []byte) (types.Prediction, error) {
	input, err := p.normalizer.Normalize(data)
	if err != nil {
		return types.Prediction{}, err
	}

	probabilities, err := p.classifier.Classify(input)
	if err != nil {
		if !errors.Is(err, ErrShapeMismatch) && !errors.Is(err, ErrInference) {
			err = fmt.Errorf("%w: %v", ErrInference, err)
		}
		return types.Prediction{}, err
	}

	prediction, err := Resolve(probabilities, p.labels, p.now().UTC())
	if err != nil {
		return types.Prediction{}, err
	}

	slog.Debug("resolved prediction", "label", prediction.Label, "confidence", prediction.Confidence)

	return prediction, nil
}
