package image

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ImagePreprocessor transforms a page image before OCR.
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

// Chain applies preprocessors in order.
type Chain []ImagePreprocessor

func (c Chain) Process(img image.Image) (image.Image, error) {
	var err error
	for _, p := range c {
		if img, err = p.Process(img); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// DefaultChain is tuned for printed exam sheets: small glyphs, thin fraction bars.
func DefaultChain() Chain {
	return Chain{
		NewGrayscaleProcessor(),
		NewContrastNormalizationProcessor(20),
		NewDenoiseProcessor(0.5),
		NewSharpenProcessor(0.5),
	}
}

type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type ContrastNormalizationProcessor struct {
	percentage float64
}

func NewContrastNormalizationProcessor(percentage float64) *ContrastNormalizationProcessor {
	return &ContrastNormalizationProcessor{percentage: percentage}
}

func (p *ContrastNormalizationProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, p.percentage), nil
}

// DenoiseProcessor applies a light gaussian blur.
type DenoiseProcessor struct {
	strength float64
}

func NewDenoiseProcessor(strength float64) *DenoiseProcessor {
	return &DenoiseProcessor{strength: strength}
}

func (p *DenoiseProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Blur(img, p.strength), nil
}

type SharpenProcessor struct {
	strength float64
}

func NewSharpenProcessor(strength float64) *SharpenProcessor {
	return &SharpenProcessor{strength: strength}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.strength), nil
}

// AdaptiveThresholdProcessor binarizes against the mean of a blockSize window.
type AdaptiveThresholdProcessor struct {
	blockSize int
	constant  float64
}

func NewAdaptiveThresholdProcessor(blockSize int, constant float64) *AdaptiveThresholdProcessor {
	return &AdaptiveThresholdProcessor{blockSize: blockSize, constant: constant}
}

func (p *AdaptiveThresholdProcessor) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// summed-area table so each window mean is O(1)
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(gray.Pix[y*gray.Stride+x*4])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + row
		}
	}

	result := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(result, result.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	half := p.blockSize / 2
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			mean := float64(sum) / float64(count)
			if float64(gray.Pix[y*gray.Stride+x*4]) < mean-p.constant {
				result.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return result, nil
}
