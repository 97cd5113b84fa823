package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

const rawPreviewLen = 200

// Pipeline renders each page, sends it to the vision model and normalizes the
// answer. Pages are processed one at a time, in order.
type Pipeline struct {
	rasterizer document.Rasterizer
	client     document.VisionClient
	dpi        float64
	prompt     string
	logger     logger.Logger
}

func NewPipeline(r document.Rasterizer, client document.VisionClient, dpi float64, log logger.Logger) *Pipeline {
	return &Pipeline{
		rasterizer: r,
		client:     client,
		dpi:        dpi,
		prompt:     document.SystemPrompt,
		logger:     log,
	}
}

func (p *Pipeline) Name() string {
	return p.client.Name()
}

// Extract runs the whole document. A page whose response cannot be parsed, or
// whose call fails, contributes no questions. The run fails when the document
// cannot be opened or rendered, when the context ends, or when every page failed
// to reach the model.
func (p *Pipeline) Extract(ctx context.Context, doc *models.Document, data []byte) (*models.ConversionResult, error) {
	src, err := p.rasterizer.Open(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pageCount := src.PageCount()
	normalizer := NewNormalizer()
	questions := make([]models.Question, 0)

	var transportErr error
	transportFailures := 0

	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageNo := i + 1
		start := time.Now()

		img, err := src.RenderPage(i, p.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNo, err)
		}

		res := p.client.ExtractPage(ctx, p.prompt, pageNo, img)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case res.OK():
			pageQuestions := normalizer.Normalize(pageNo, res.Questions)
			questions = append(questions, pageQuestions...)
			p.logger.Info("Page extracted",
				logger.String("pdfId", doc.ID),
				logger.Int("page", pageNo),
				logger.Int("questions", len(pageQuestions)),
				logger.Duration("elapsed", time.Since(start)),
			)
		case errors.Is(res.Err, models.ErrExternalService):
			transportFailures++
			transportErr = res.Err
			p.logger.Error("Page extraction call failed",
				logger.String("pdfId", doc.ID),
				logger.Int("page", pageNo),
				logger.Error(res.Err),
			)
		default:
			p.logger.Warn("Page response could not be parsed",
				logger.String("pdfId", doc.ID),
				logger.Int("page", pageNo),
				logger.Error(res.Err),
				logger.String("rawResponse", logger.Truncate(res.RawResponse, rawPreviewLen)),
			)
		}
	}

	if pageCount > 0 && transportFailures == pageCount {
		return nil, fmt.Errorf("all %d pages failed: %w", pageCount, transportErr)
	}

	return &models.ConversionResult{
		Meta: models.ConversionMeta{
			Engine:    p.client.Name(),
			PageCount: pageCount,
		},
		Questions: questions,
	}, nil
}
