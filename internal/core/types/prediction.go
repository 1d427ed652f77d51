package types

import (
	"fmt"
	"time"
)

// Tensor is a dense float32 array in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

func NewTensor(shape []int64, data []float32) (Tensor, error) {
	if size := ShapeSize(shape); size != int64(len(data)) {
		return Tensor{}, fmt.Errorf("tensor of shape %v needs %d values, got %d", shape, size, len(data))
	}
	return Tensor{Shape: shape, Data: data}, nil
}

func ShapeSize(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	size := int64(1)
	for _, dim := range shape {
		size *= dim
	}
	return size
}

func SameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Prediction is the resolved output of a single classification. It is never
// mutated after creation.
type Prediction struct {
	Label      string
	Confidence float64
	Timestamp  time.Time
}
