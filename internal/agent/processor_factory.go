package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/image"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/pdf"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/text"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/vision"
	"github.com/hyperon-hyeon/Graphear/internal/agent/speech"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

const (
	StrategyVision = "vision"
	StrategyText   = "text"
)

// ProcessorFactory builds the extraction strategy and speech engine selected by
// configuration. Clients it opens are released by Close.
type ProcessorFactory struct {
	cfg     *config.Config
	logger  logger.Logger
	closers []io.Closer
}

func NewProcessorFactory(cfg *config.Config, log logger.Logger) *ProcessorFactory {
	return &ProcessorFactory{cfg: cfg, logger: log}
}

// NewExtractor builds the configured extraction strategy.
func (f *ProcessorFactory) NewExtractor(ctx context.Context) (document.Extractor, error) {
	ext := f.cfg.Extraction
	rasterizer := pdf.NewFitzRasterizer(ext.MaxWidth)

	f.logger.Info("Building extractor",
		logger.String("strategy", ext.Strategy),
		logger.String("visionBackend", ext.VisionBackend),
		logger.String("textSource", ext.TextSource),
		logger.Float64("dpi", ext.DPI),
	)

	switch ext.Strategy {
	case StrategyVision:
		client, err := f.newVisionClient(ctx)
		if err != nil {
			return nil, err
		}
		return vision.NewPipeline(rasterizer, client, ext.DPI, f.logger.Named("pipeline")), nil
	case StrategyText:
		source, err := f.newTextSource(ctx, rasterizer)
		if err != nil {
			return nil, err
		}
		return text.NewStrategy(source, f.logger.Named("segmenter")), nil
	default:
		return nil, fmt.Errorf("unsupported extraction strategy: %s", ext.Strategy)
	}
}

func (f *ProcessorFactory) newVisionClient(ctx context.Context) (document.VisionClient, error) {
	log := f.logger.Named("vision")
	switch f.cfg.Extraction.VisionBackend {
	case "gemini", "":
		client, err := image.NewGeminiClient(ctx, f.cfg.Gemini, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		f.closers = append(f.closers, client)
		return client, nil
	case "ollama":
		client := image.NewOllamaClient(f.cfg.Ollama, log)
		f.closers = append(f.closers, client)
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported vision backend: %s", f.cfg.Extraction.VisionBackend)
	}
}

func (f *ProcessorFactory) newTextSource(ctx context.Context, r document.Rasterizer) (document.TextSource, error) {
	ext := f.cfg.Extraction
	log := f.logger.Named("text")
	switch ext.TextSource {
	case "pdftext", "":
		return pdf.NewTextLayer(log), nil
	case "tesseract":
		var chain image.Chain
		if ext.Preprocess {
			chain = image.DefaultChain()
		}
		return image.NewTesseractSource(r, ext.DPI, ext.OCRLanguages, chain, log), nil
	case "textract":
		source, err := image.NewTextractSource(ctx, f.cfg.Textract, r, ext.DPI, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create textract source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported text source: %s", ext.TextSource)
	}
}

// NewSynthesizer builds the configured text-to-speech engine.
func (f *ProcessorFactory) NewSynthesizer() (speech.Synthesizer, error) {
	log := f.logger.Named("tts")
	switch f.cfg.TTS.Provider {
	case "gtts", "":
		return speech.NewGTTS(f.cfg.TTS, log), nil
	case "openai":
		return speech.NewOpenAISynthesizer(f.cfg.OpenAI, f.cfg.TTS, log)
	default:
		return nil, fmt.Errorf("unsupported tts provider: %s", f.cfg.TTS.Provider)
	}
}

func (f *ProcessorFactory) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
