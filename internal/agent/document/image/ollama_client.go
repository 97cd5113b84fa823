package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// OllamaResponse is the non-streaming /api/generate response.
type OllamaResponse struct {
	Response      string `json:"response"`
	Model         string `json:"model"`
	Done          bool   `json:"done"`
	TotalDuration int64  `json:"total_duration,omitempty"`
	EvalCount     int    `json:"eval_count,omitempty"`
	Error         string `json:"error,omitempty"`
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

// OllamaClient extracts questions with a locally hosted vision model.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

func NewOllamaClient(cfg config.OllamaConfig, log logger.Logger) *OllamaClient {
	return &OllamaClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}
}

func (c *OllamaClient) Name() string {
	return "ollama/" + c.model
}

func (c *OllamaClient) ExtractPage(ctx context.Context, prompt string, page int, img []byte) models.PageResult {
	raw, err := c.generate(ctx, prompt, document.PageHint(page), img)
	if err != nil {
		return models.PageResult{
			Page: page,
			Err:  fmt.Errorf("%w: ollama page %d: %v", models.ErrExternalService, page, err),
		}
	}
	return document.ParsePageResponse(page, raw)
}

func (c *OllamaClient) generate(ctx context.Context, system, prompt string, img []byte) (string, error) {
	reqData, err := json.Marshal(ollamaRequest{
		Model:   c.model,
		System:  system,
		Prompt:  prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(img)},
		Format:  "json",
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(reqData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var result OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	c.logger.Debug("Ollama page response",
		logger.String("model", result.Model),
		logger.Int("evalCount", result.EvalCount),
	)
	return result.Response, nil
}

func (c *OllamaClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
