package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ModelFileName    = "model.onnx"
	MetadataFileName = "model_metadata.json"

	defaultImageSize = 224
)

type Layout string

const (
	LayoutNHWC Layout = "NHWC"
	LayoutNCHW Layout = "NCHW"
)

// ModelMetadata describes the classifier artifact that sits next to the
// model file. Fields that are omitted fall back to the values the bundled
// MobileNet snake model was trained with.
type ModelMetadata struct {
	InputShape    []int64  `json:"input_shape"`
	OutputShape   []int64  `json:"output_shape"`
	Classes       []string `json:"classes"`
	ImageSize     int      `json:"image_size"`
	InputName     string   `json:"input_name"`
	OutputName    string   `json:"output_name"`
	Layout        Layout   `json:"layout"`
	Preprocessing string   `json:"preprocessing"`
	Interpolation string   `json:"interpolation"`
}

func LoadModelMetadata(modelDir string) (ModelMetadata, error) {
	path := filepath.Join(modelDir, MetadataFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return ModelMetadata{}, fmt.Errorf("failed to read model metadata %s: %w", path, err)
	}

	var meta ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return ModelMetadata{}, fmt.Errorf("failed to parse model metadata %s: %w", path, err)
	}

	meta = meta.WithDefaults()
	if err := meta.Validate(); err != nil {
		return ModelMetadata{}, fmt.Errorf("invalid model metadata %s: %w", path, err)
	}

	return meta, nil
}

func (m ModelMetadata) WithDefaults() ModelMetadata {
	if len(m.Classes) == 0 {
		m.Classes = append([]string(nil), DefaultSnakeLabels...)
	}
	if m.ImageSize == 0 {
		m.ImageSize = defaultImageSize
	}
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Preprocessing == "" {
		m.Preprocessing = PreprocessMobileNet
	}
	if m.Interpolation == "" {
		m.Interpolation = InterpolationNearest
	}
	if len(m.InputShape) == 0 {
		size := int64(m.ImageSize)
		if m.Layout == LayoutNCHW {
			m.InputShape = []int64{1, 3, size, size}
		} else {
			m.InputShape = []int64{1, size, size, 3}
		}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
	return m
}

func (m ModelMetadata) Validate() error {
	if m.Layout != LayoutNHWC && m.Layout != LayoutNCHW {
		return fmt.Errorf("unsupported layout '%s'", m.Layout)
	}

	if len(m.InputShape) != 4 || m.InputShape[0] != 1 {
		return fmt.Errorf("input shape must be [1, ...] with 4 dimensions, got %v", m.InputShape)
	}

	channels := m.InputShape[3]
	if m.Layout == LayoutNCHW {
		channels = m.InputShape[1]
	}
	if channels != 3 {
		return fmt.Errorf("input shape %v does not have 3 channels in %s layout", m.InputShape, m.Layout)
	}

	if len(m.OutputShape) != 2 || m.OutputShape[0] != 1 {
		return fmt.Errorf("output shape must be [1, classes], got %v", m.OutputShape)
	}

	if m.OutputShape[1] != int64(len(m.Classes)) {
		return fmt.Errorf("model has %d outputs but %d classes are configured", m.OutputShape[1], len(m.Classes))
	}

	if _, ok := preprocessors[m.Preprocessing]; !ok {
		return fmt.Errorf("unsupported preprocessing '%s'", m.Preprocessing)
	}

	if _, ok := interpolations[m.Interpolation]; !ok {
		return fmt.Errorf("unsupported interpolation '%s'", m.Interpolation)
	}

	return nil
}

// InputSize returns the height and width the model expects.
func (m ModelMetadata) InputSize() (int, int) {
	if m.Layout == LayoutNCHW {
		return int(m.InputShape[2]), int(m.InputShape[3])
	}
	return int(m.InputShape[1]), int(m.InputShape[2])
}
