package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// pageOCR recognizes the text of one rendered page.
type pageOCR func(ctx context.Context, page int, png []byte) (string, error)

// renderPages rasterizes every page and hands it to ocr, collecting the texts in page order.
func renderPages(ctx context.Context, r document.Rasterizer, dpi float64, data []byte, ocr pageOCR) ([]string, error) {
	src, err := r.Open(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	n := src.PageCount()
	texts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := src.RenderPage(i, dpi)
		if err != nil {
			return nil, err
		}
		text, err := ocr(ctx, i+1, png)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// TesseractSource OCRs rendered pages locally with tesseract.
type TesseractSource struct {
	rasterizer    document.Rasterizer
	dpi           float64
	languages     []string
	preprocessors Chain
	logger        logger.Logger
}

// NewTesseractSource builds a tesseract text source. A nil chain skips preprocessing.
func NewTesseractSource(r document.Rasterizer, dpi float64, languages []string, chain Chain, log logger.Logger) *TesseractSource {
	return &TesseractSource{
		rasterizer:    r,
		dpi:           dpi,
		languages:     languages,
		preprocessors: chain,
		logger:        log,
	}
}

func (p *TesseractSource) Name() string {
	return "tesseract"
}

func (p *TesseractSource) PageTexts(ctx context.Context, data []byte) ([]string, error) {
	// gosseract clients are not safe for concurrent use
	client := gosseract.NewClient()
	defer client.Close()

	if len(p.languages) > 0 {
		if err := client.SetLanguage(p.languages...); err != nil {
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return renderPages(ctx, p.rasterizer, p.dpi, data, func(ctx context.Context, page int, png []byte) (string, error) {
		input, err := p.applyPreprocessing(png)
		if err != nil {
			p.logger.Warn("Preprocessing failed, using original render",
				logger.Int("page", page),
				logger.Error(err),
			)
			input = png
		}
		if err := client.SetImageFromBytes(input); err != nil {
			return "", fmt.Errorf("failed to set image for page %d: %w", page, err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("failed to recognize page %d: %w", page, err)
		}
		p.logger.Debug("Page recognized",
			logger.Int("page", page),
			logger.Int("chars", len(text)),
		)
		return text, nil
	})
}

func (p *TesseractSource) applyPreprocessing(png []byte) ([]byte, error) {
	if len(p.preprocessors) == 0 {
		return png, nil
	}
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	processed, err := p.preprocessors.Process(img)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
