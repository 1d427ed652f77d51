package core

import "errors"

var (
	ErrDecode        = errors.New("unable to decode image")
	ErrShapeMismatch = errors.New("tensor shape does not match model input")
	ErrInference     = errors.New("inference failed")
	ErrEmptyVector   = errors.New("probability vector is empty or does not match label set")
)
