package core_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"snake-backend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int, fill func(x, y int) color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(c color.NRGBA) func(x, y int) color.NRGBA {
	return func(x, y int) color.NRGBA { return c }
}

func testMetadata(size int, layout core.Layout, preprocessing string) core.ModelMetadata {
	return core.ModelMetadata{
		ImageSize:     size,
		Layout:        layout,
		Preprocessing: preprocessing,
	}.WithDefaults()
}

func TestNormalizeShape(t *testing.T) {
	for _, layout := range []core.Layout{core.LayoutNHWC, core.LayoutNCHW} {
		normalizer, err := core.NewNormalizer(testMetadata(8, layout, core.PreprocessMobileNet))
		require.NoError(t, err)

		for _, size := range [][2]int{{8, 8}, {20, 13}, {3, 40}, {1, 1}} {
			data := encodePNG(t, size[0], size[1], solid(color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

			tensor, err := normalizer.Normalize(data)
			require.NoError(t, err)
			assert.Equal(t, normalizer.OutputShape(), tensor.Shape)
			assert.Len(t, tensor.Data, 8*8*3)
		}
	}

	normalizer, err := core.NewNormalizer(testMetadata(8, core.LayoutNHWC, core.PreprocessMobileNet))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 8, 8, 3}, normalizer.OutputShape())
}

func TestNormalizeValues(t *testing.T) {
	data := encodePNG(t, 4, 4, solid(color.NRGBA{R: 255, G: 0, B: 51, A: 255}))

	t.Run("MobileNetNHWC", func(t *testing.T) {
		normalizer, err := core.NewNormalizer(testMetadata(2, core.LayoutNHWC, core.PreprocessMobileNet))
		require.NoError(t, err)

		tensor, err := normalizer.Normalize(data)
		require.NoError(t, err)
		for pixel := 0; pixel < 4; pixel++ {
			assert.InDelta(t, 1.0, tensor.Data[pixel*3], 1e-6)
			assert.InDelta(t, -1.0, tensor.Data[pixel*3+1], 1e-6)
			assert.InDelta(t, 51/127.5-1, tensor.Data[pixel*3+2], 1e-6)
		}
	})

	t.Run("UnitNCHW", func(t *testing.T) {
		normalizer, err := core.NewNormalizer(testMetadata(2, core.LayoutNCHW, core.PreprocessUnit))
		require.NoError(t, err)

		tensor, err := normalizer.Normalize(data)
		require.NoError(t, err)
		for pixel := 0; pixel < 4; pixel++ {
			assert.InDelta(t, 1.0, tensor.Data[pixel], 1e-6)
			assert.InDelta(t, 0.0, tensor.Data[4+pixel], 1e-6)
			assert.InDelta(t, 0.2, tensor.Data[8+pixel], 1e-6)
		}
	})
}

func TestNormalizeDeterministic(t *testing.T) {
	data := encodePNG(t, 17, 11, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 13), G: uint8(y * 7), B: uint8(x + y), A: 255}
	})

	normalizer, err := core.NewNormalizer(testMetadata(8, core.LayoutNHWC, core.PreprocessMobileNet))
	require.NoError(t, err)

	first, err := normalizer.Normalize(data)
	require.NoError(t, err)
	second, err := normalizer.Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeDecodeError(t *testing.T) {
	normalizer, err := core.NewNormalizer(testMetadata(8, core.LayoutNHWC, core.PreprocessMobileNet))
	require.NoError(t, err)

	_, err = normalizer.Normalize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, core.ErrDecode)

	_, err = normalizer.Normalize(nil)
	assert.ErrorIs(t, err, core.ErrDecode)
}

// declaredSizePNG returns a 1x1 PNG whose header claims width x height.
func declaredSizePNG(t *testing.T, width, height uint32) []byte {
	data := encodePNG(t, 1, 1, solid(color.NRGBA{A: 255}))
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestNormalizeRejectsOversizedImage(t *testing.T) {
	normalizer, err := core.NewNormalizer(testMetadata(224, core.LayoutNHWC, core.PreprocessMobileNet))
	require.NoError(t, err)

	data := declaredSizePNG(t, 8000, 8000)
	assert.Less(t, len(data), 1024)

	_, err = normalizer.Normalize(data)
	assert.ErrorIs(t, err, core.ErrDecode)
	assert.ErrorContains(t, err, "8000x8000")
}

func TestNormalizeMaxPixels(t *testing.T) {
	normalizer, err := core.NewNormalizer(testMetadata(8, core.LayoutNHWC, core.PreprocessMobileNet))
	require.NoError(t, err)
	normalizer.WithMaxPixels(100)

	fill := solid(color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	_, err = normalizer.Normalize(encodePNG(t, 10, 10, fill))
	assert.NoError(t, err)

	_, err = normalizer.Normalize(encodePNG(t, 11, 10, fill))
	assert.ErrorIs(t, err, core.ErrDecode)

	normalizer.WithMaxPixels(0)
	_, err = normalizer.Normalize(encodePNG(t, 11, 10, fill))
	assert.ErrorIs(t, err, core.ErrDecode)
}
