package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// TextLayer reads the embedded text layer of a PDF. Scanned exams have none, so
// an all-empty result is not an error.
type TextLayer struct {
	logger logger.Logger
}

func NewTextLayer(log logger.Logger) *TextLayer {
	return &TextLayer{logger: log}
}

func (t *TextLayer) Name() string {
	return "pdftext"
}

func (t *TextLayer) PageTexts(ctx context.Context, data []byte) ([]string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentCorrupt, err)
	}

	numPages := pdfReader.NumPage()
	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := pdfReader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := pageText(page)
		if err != nil {
			t.logger.Warn("Failed to read page text",
				logger.Int("page", i),
				logger.Error(err),
			)
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// pageText rebuilds lines from the page's rows; GetPlainText loses line breaks,
// which the question header markers rely on.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// PageCount inspects data with pdfcpu without rendering anything.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrDocumentCorrupt, err)
	}
	return n, nil
}
