package config

import "time"

// ExtractionConfig picks how a document is turned into questions.
type ExtractionConfig struct {
	// Strategy is "vision" (one model call per page image) or "text" (flat text + segmenter).
	Strategy string `yaml:"strategy"`
	// VisionBackend is "gemini" or "ollama".
	VisionBackend string `yaml:"visionBackend"`
	// TextSource is "pdftext", "tesseract" or "textract".
	TextSource   string   `yaml:"textSource"`
	DPI          float64  `yaml:"dpi"`
	MaxWidth     int      `yaml:"maxWidth"`
	OCRLanguages []string `yaml:"ocrLanguages"`
	// Preprocess enables grayscale/contrast/sharpen before OCR.
	Preprocess bool `yaml:"preprocess"`
}

type GeminiConfig struct {
	ProjectID string `yaml:"projectID"`
	Region    string `yaml:"region"`
	Model     string `yaml:"model"`
}

type OllamaConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (e *ExtractionConfig) applyEnv() {
	envString(&e.Strategy, "EXTRACTION_STRATEGY")
	envString(&e.VisionBackend, "VISION_BACKEND")
	envString(&e.TextSource, "TEXT_SOURCE")
	envFloat(&e.DPI, "RENDER_DPI")
	envInt(&e.MaxWidth, "RENDER_MAX_WIDTH")
	envStrings(&e.OCRLanguages, "OCR_LANGUAGES")
	envBool(&e.Preprocess, "OCR_PREPROCESS")
}

func (g *GeminiConfig) applyEnv() {
	envString(&g.ProjectID, "GEMINI_PROJECT_ID")
	envString(&g.Region, "GEMINI_REGION")
	envString(&g.Model, "GEMINI_MODEL")
}

func (o *OllamaConfig) applyEnv() {
	envString(&o.Endpoint, "OLLAMA_ENDPOINT")
	envString(&o.Model, "OLLAMA_MODEL")
	envDuration(&o.Timeout, "OLLAMA_TIMEOUT")
}
