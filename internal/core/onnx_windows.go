//go:build windows

package core

import (
	"errors"

	"snake-backend/internal/core/types"
)

var ErrOnnxNotSupportedOnWindows = errors.New("ONNX models are not supported on Windows")

type OnnxOptions struct {
	IntraOpThreads int
}

type OnnxClassifier struct{}

func LoadOnnxClassifier(modelDir string, meta ModelMetadata, opts OnnxOptions) (*OnnxClassifier, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (c *OnnxClassifier) InputShape() []int64 {
	return nil
}

func (c *OnnxClassifier) Classify(input types.Tensor) ([]float32, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (c *OnnxClassifier) Release() {
	// no-op
}
