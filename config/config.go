package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	once      sync.Once
	appConfig *Config
	loadErr   error
)

// Config is the full process configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Textract   AWSConfig        `yaml:"textract"`
	TTS        TTSConfig        `yaml:"tts"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Queue      QueueConfig      `yaml:"queue"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	PublicBaseURL  string        `yaml:"publicBaseURL"`
	AllowOrigins   []string      `yaml:"allowOrigins"`
	Retention      time.Duration `yaml:"retention"`
	CleanupEvery   time.Duration `yaml:"cleanupEvery"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

type QueueConfig struct {
	Enabled     bool           `yaml:"enabled"`
	RedisAddr   string         `yaml:"redisAddr"`
	RedisDB     int            `yaml:"redisDB"`
	Concurrency int            `yaml:"concurrency"`
	Queues      map[string]int `yaml:"queues"`
	StatusTTL   time.Duration  `yaml:"statusTTL"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 50 * 1024 * 1024,
			AllowOrigins:   []string{"*"},
			CleanupEvery:   time.Hour,
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout"},
		},
		Storage: StorageConfig{
			Type:     "local",
			LocalDir: "uploads",
		},
		Extraction: ExtractionConfig{
			Strategy:      "vision",
			VisionBackend: "gemini",
			TextSource:    "pdftext",
			DPI:           200,
			OCRLanguages:  []string{"kor", "eng"},
		},
		Gemini: GeminiConfig{
			Region: "us-central1",
			Model:  "gemini-2.5-flash",
		},
		Ollama: OllamaConfig{
			Endpoint: "http://localhost:11434",
			Model:    "llama3.2-vision",
			Timeout:  120 * time.Second,
		},
		TTS: TTSConfig{
			Provider:     "gtts",
			Language:     "ko",
			Endpoint:     "https://translate.google.com/translate_tts",
			PauseOnBreak: true,
			Timeout:      30 * time.Second,
			RateLimit:    5,
		},
		OpenAI: OpenAIConfig{
			SpeechModel: "tts-1",
			Voice:       "alloy",
		},
		Queue: QueueConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 4,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StatusTTL: 24 * time.Hour,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, .env and the environment,
// later sources overriding earlier ones.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get loads the configuration once, using CONFIG_FILE when set.
func Get() (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = Load(os.Getenv("CONFIG_FILE"))
	})
	return appConfig, loadErr
}

func (c *Config) applyEnv() {
	envString(&c.Server.Addr, "SERVER_ADDR")
	envInt64(&c.Server.MaxUploadBytes, "MAX_UPLOAD_BYTES")
	envString(&c.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	envStrings(&c.Server.AllowOrigins, "CORS_ALLOW_ORIGINS")
	envDuration(&c.Server.Retention, "RETENTION_PERIOD")
	envDuration(&c.Server.CleanupEvery, "CLEANUP_INTERVAL")

	envString(&c.Log.Level, "LOG_LEVEL")
	envString(&c.Log.Encoding, "LOG_ENCODING")
	envStrings(&c.Log.OutputPaths, "LOG_OUTPUT_PATHS")

	envBool(&c.Queue.Enabled, "QUEUE_ENABLED")
	envString(&c.Queue.RedisAddr, "REDIS_ADDR")
	envInt(&c.Queue.RedisDB, "REDIS_DB")
	envInt(&c.Queue.Concurrency, "WORKER_CONCURRENCY")
	envDuration(&c.Queue.StatusTTL, "TASK_STATUS_TTL")

	c.Storage.applyEnv()
	c.Extraction.applyEnv()
	c.Gemini.applyEnv()
	c.Ollama.applyEnv()
	c.Textract.applyEnv("TEXTRACT")
	c.TTS.applyEnv()
	c.OpenAI.applyEnv()
}

// Validate rejects combinations that cannot be served.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local", "s3", "minio", "gcs":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	switch c.Extraction.Strategy {
	case "vision", "text":
	default:
		return fmt.Errorf("unsupported extraction strategy: %s", c.Extraction.Strategy)
	}
	switch c.TTS.Provider {
	case "gtts", "openai":
	default:
		return fmt.Errorf("unsupported tts provider: %s", c.TTS.Provider)
	}
	if c.Extraction.DPI <= 0 {
		return fmt.Errorf("extraction dpi must be positive, got %v", c.Extraction.DPI)
	}
	return nil
}
