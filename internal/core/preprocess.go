package core

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"snake-backend/internal/core/types"

	"github.com/nfnt/resize"
)

const (
	PreprocessMobileNet = "mobilenet"
	PreprocessUnit      = "unit"
	PreprocessImageNet  = "imagenet"

	InterpolationNearest  = "nearest"
	InterpolationBilinear = "bilinear"
	InterpolationLanczos3 = "lanczos3"

	DefaultMaxImagePixels = 40_000_000
)

type channelTransform func(value float32, channel int) float32

var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

var preprocessors = map[string]channelTransform{
	// Scales to [-1, 1], the transform keras.applications.mobilenet applies.
	PreprocessMobileNet: func(v float32, _ int) float32 {
		return v/127.5 - 1
	},
	PreprocessUnit: func(v float32, _ int) float32 {
		return v / 255
	},
	PreprocessImageNet: func(v float32, c int) float32 {
		return (v/255 - imageNetMean[c]) / imageNetStd[c]
	},
}

var interpolations = map[string]resize.InterpolationFunction{
	InterpolationNearest:  resize.NearestNeighbor,
	InterpolationBilinear: resize.Bilinear,
	InterpolationLanczos3: resize.Lanczos3,
}

// Normalizer turns encoded image bytes into the input tensor of the
// classifier. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	width     int
	height    int
	layout    Layout
	transform channelTransform
	interp    resize.InterpolationFunction
	maxPixels int
}

func NewNormalizer(meta ModelMetadata) (*Normalizer, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	height, width := meta.InputSize()

	return &Normalizer{
		width:     width,
		height:    height,
		layout:    meta.Layout,
		transform: preprocessors[meta.Preprocessing],
		interp:    interpolations[meta.Interpolation],
		maxPixels: DefaultMaxImagePixels,
	}, nil
}

// WithMaxPixels caps width*height of accepted images. The cap is checked
// against the image header before the raster is decoded.
func (n *Normalizer) WithMaxPixels(maxPixels int) *Normalizer {
	if maxPixels > 0 {
		n.maxPixels = maxPixels
	}
	return n
}

func (n *Normalizer) OutputShape() []int64 {
	if n.layout == LayoutNCHW {
		return []int64{1, 3, int64(n.height), int64(n.width)}
	}
	return []int64{1, int64(n.height), int64(n.width), 3}
}

func (n *Normalizer) Normalize(data []byte) (types.Tensor, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.Tensor{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return types.Tensor{}, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return types.Tensor{}, fmt.Errorf("%w: image is %dx%d, larger than the limit of %d pixels", ErrDecode, cfg.Width, cfg.Height, n.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return types.Tensor{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if bounds := img.Bounds(); bounds.Dx() == 0 || bounds.Dy() == 0 {
		return types.Tensor{}, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	resized := resize.Resize(uint(n.width), uint(n.height), img, n.interp)

	bounds := resized.Bounds()
	plane := n.width * n.height
	values := make([]float32, 3*plane)

	for y := 0; y < n.height; y++ {
		for x := 0; x < n.width; x++ {
			px := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			rgb := [3]uint8{px.R, px.G, px.B}

			pixel := y*n.width + x
			for c := 0; c < 3; c++ {
				value := n.transform(float32(rgb[c]), c)
				if n.layout == LayoutNCHW {
					values[c*plane+pixel] = value
				} else {
					values[pixel*3+c] = value
				}
			}
		}
	}

	return types.NewTensor(n.OutputShape(), values)
}
