package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// GeminiClient extracts questions from page images with a Gemini model on Vertex AI.
// One client is built at startup and shared by all conversions.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) (*GeminiClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gemini project id is required")
	}
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	log.Info("Gemini client initialized",
		logger.String("project", cfg.ProjectID),
		logger.String("region", cfg.Region),
		logger.String("model", cfg.Model),
	)

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: cfg.Model,
		logger:    log,
	}, nil
}

func (g *GeminiClient) Name() string {
	return g.modelName
}

func (g *GeminiClient) ExtractPage(ctx context.Context, prompt string, page int, img []byte) models.PageResult {
	start := time.Now()
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Text(document.PageHint(page)),
		genai.ImageData("png", img),
	)
	if err != nil {
		return models.PageResult{
			Page: page,
			Err:  fmt.Errorf("%w: gemini page %d: %v", models.ErrExternalService, page, err),
		}
	}

	raw := responseText(resp)
	g.logger.Debug("Gemini page response",
		logger.Int("page", page),
		logger.Duration("elapsed", time.Since(start)),
		logger.Int("bytes", len(raw)),
	)
	return document.ParsePageResponse(page, raw)
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
