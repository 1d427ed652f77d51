//go:build !windows

package core

import (
	"fmt"
	"path/filepath"

	"snake-backend/internal/core/types"

	ort "github.com/yalue/onnxruntime_go"
)

type OnnxOptions struct {
	IntraOpThreads int
}

// OnnxClassifier runs an image classification graph through onnxruntime. The
// dynamic session binds tensors per call so concurrent requests never share
// input or output buffers.
type OnnxClassifier struct {
	session     *ort.DynamicAdvancedSession
	inputShape  []int64
	outputShape []int64
}

func LoadOnnxClassifier(modelDir string, meta ModelMetadata, opts OnnxOptions) (*OnnxClassifier, error) {
	modelPath := filepath.Join(modelDir, ModelFileName)

	var options *ort.SessionOptions
	if opts.IntraOpThreads > 0 {
		var err error
		options, err = ort.NewSessionOptions()
		if err != nil {
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer options.Destroy()

		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("failed to set intra op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{meta.InputName},
		[]string{meta.OutputName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session for %s: %w", modelPath, err)
	}

	return &OnnxClassifier{
		session:     session,
		inputShape:  append([]int64(nil), meta.InputShape...),
		outputShape: append([]int64(nil), meta.OutputShape...),
	}, nil
}

func (c *OnnxClassifier) InputShape() []int64 {
	return append([]int64(nil), c.inputShape...)
}

func (c *OnnxClassifier) Classify(input types.Tensor) ([]float32, error) {
	if err := checkInputShape(c.inputShape, input); err != nil {
		return nil, err
	}

	inT, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: creating input tensor: %v", ErrInference, err)
	}
	defer inT.Destroy()

	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(c.outputShape...))
	if err != nil {
		return nil, fmt.Errorf("%w: creating output tensor: %v", ErrInference, err)
	}
	defer outT.Destroy()

	if err := c.session.Run([]ort.Value{inT}, []ort.Value{outT}); err != nil {
		return nil, fmt.Errorf("%w: session run error: %v", ErrInference, err)
	}

	out := outT.GetData()
	probabilities := make([]float32, len(out))
	copy(probabilities, out)

	return probabilities, nil
}

func (c *OnnxClassifier) Release() {
	if c.session != nil {
		c.session.Destroy()
	}
}
