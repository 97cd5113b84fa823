package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/text"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/vision"
	"github.com/hyperon-hyeon/Graphear/internal/agent/speech"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

func TestProcessorFactory_Extractors(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.Strategy = StrategyText
	f := NewProcessorFactory(cfg, logger.NewNop())
	defer f.Close()

	ext, err := f.NewExtractor(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &text.Strategy{}, ext)
	assert.Equal(t, "pdftext", ext.Name())

	cfg.Extraction.TextSource = "tesseract"
	ext, err = f.NewExtractor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tesseract", ext.Name())

	cfg.Extraction.Strategy = StrategyVision
	cfg.Extraction.VisionBackend = "ollama"
	ext, err = f.NewExtractor(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &vision.Pipeline{}, ext)
	assert.Equal(t, "ollama/llama3.2-vision", ext.Name())

	cfg.Extraction.VisionBackend = "gemini"
	cfg.Gemini.ProjectID = ""
	_, err = f.NewExtractor(context.Background())
	assert.Error(t, err)

	cfg.Extraction.Strategy = "telepathy"
	_, err = f.NewExtractor(context.Background())
	assert.Error(t, err)
}

func TestProcessorFactory_Synthesizers(t *testing.T) {
	cfg := config.Default()
	f := NewProcessorFactory(cfg, logger.NewNop())

	s, err := f.NewSynthesizer()
	require.NoError(t, err)
	assert.IsType(t, &speech.GTTS{}, s)

	cfg.TTS.Provider = "openai"
	cfg.OpenAI.APIKey = "sk-test"
	s, err = f.NewSynthesizer()
	require.NoError(t, err)
	assert.Equal(t, "openai/tts-1", s.Name())

	cfg.TTS.Provider = "espeak"
	_, err = f.NewSynthesizer()
	assert.Error(t, err)
}
