package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// OpenAISynthesizer speaks through the OpenAI audio speech API.
type OpenAISynthesizer struct {
	client       *openai.Client
	model        string
	voice        string
	pauseOnBreak bool
	logger       logger.Logger
}

func NewOpenAISynthesizer(cfg config.OpenAIConfig, tts config.TTSConfig, log logger.Logger) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0))
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if tts.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(tts.Timeout))
	}
	client := openai.NewClient(opts...)

	return &OpenAISynthesizer{
		client:       &client,
		model:        cfg.SpeechModel,
		voice:        cfg.Voice,
		pauseOnBreak: tts.PauseOnBreak,
		logger:       log,
	}, nil
}

func (s *OpenAISynthesizer) Name() string {
	return "openai/" + s.model
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	input := PrepareText(text, s.pauseOnBreak)
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: text is empty", models.ErrInvalidInput)
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          input,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: openai speech: %v", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read speech audio: %v", models.ErrExternalService, err)
	}
	return audio, nil
}
