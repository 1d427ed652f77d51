package core

import (
	"fmt"

	"snake-backend/internal/core/types"
)

// Classifier maps an input tensor to a probability vector, one value per
// label. Implementations are loaded once and must be safe for concurrent
// Classify calls.
type Classifier interface {
	InputShape() []int64

	Classify(input types.Tensor) ([]float32, error)

	Release()
}

type ClassifierType string

const (
	OnnxImageClassifier ClassifierType = "onnx"
)

type ClassifierLoader func(modelDir string, meta ModelMetadata) (Classifier, error)

func NewClassifierLoaders(opts OnnxOptions) map[ClassifierType]ClassifierLoader {
	return map[ClassifierType]ClassifierLoader{
		OnnxImageClassifier: func(modelDir string, meta ModelMetadata) (Classifier, error) {
			return LoadOnnxClassifier(modelDir, meta, opts)
		},
	}
}

func checkInputShape(expected []int64, input types.Tensor) error {
	if !types.SameShape(expected, input.Shape) {
		return fmt.Errorf("%w: expected %v, got %v", ErrShapeMismatch, expected, input.Shape)
	}
	if types.ShapeSize(input.Shape) != int64(len(input.Data)) {
		return fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, input.Shape, types.ShapeSize(input.Shape), len(input.Data))
	}
	return nil
}
