package image

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// textractAPI is the part of the Textract client this package calls.
type textractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// TextractSource OCRs rendered pages with AWS Textract.
type TextractSource struct {
	client        textractAPI
	rasterizer    document.Rasterizer
	dpi           float64
	minConfidence float32
	logger        logger.Logger
}

func NewTextractSource(ctx context.Context, cfg config.AWSConfig, r document.Rasterizer, dpi float64, log logger.Logger) (*TextractSource, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newTextractSource(client, r, dpi, log), nil
}

func newTextractSource(client textractAPI, r document.Rasterizer, dpi float64, log logger.Logger) *TextractSource {
	return &TextractSource{
		client:        client,
		rasterizer:    r,
		dpi:           dpi,
		minConfidence: 50,
		logger:        log,
	}
}

func (p *TextractSource) Name() string {
	return "textract"
}

func (p *TextractSource) PageTexts(ctx context.Context, data []byte) ([]string, error) {
	return renderPages(ctx, p.rasterizer, p.dpi, data, func(ctx context.Context, page int, png []byte) (string, error) {
		out, err := p.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
			Document: &types.Document{Bytes: png},
		})
		if err != nil {
			return "", fmt.Errorf("%w: textract page %d: %v", models.ErrExternalService, page, err)
		}
		return strings.Join(p.lines(out.Blocks), "\n"), nil
	})
}

// lines keeps LINE blocks at or above the confidence floor, in reading order.
func (p *TextractSource) lines(blocks []types.Block) []string {
	var texts []string
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < p.minConfidence {
			continue
		}
		texts = append(texts, *block.Text)
	}
	return texts
}
