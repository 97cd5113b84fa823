package image

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 240, G: 240, B: 240, A: 255}
			if (x/4+y/4)%2 == 0 {
				c = color.NRGBA{R: 10, G: 10, B: 10, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDefaultChainKeepsSize(t *testing.T) {
	src := checkerboard(32, 24)

	out, err := DefaultChain().Process(src)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds().Size(), out.Bounds().Size())
}

func TestAdaptiveThreshold(t *testing.T) {
	src := checkerboard(16, 16)

	out, err := NewAdaptiveThresholdProcessor(7, 2).Process(src)
	require.NoError(t, err)

	gray, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(0), gray.GrayAt(3, 3).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(4, 0).Y)

	_, err = NewAdaptiveThresholdProcessor(7, 2).Process(nil)
	assert.Error(t, err)
}
