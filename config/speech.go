package config

import "time"

type TTSConfig struct {
	// Provider is "gtts" or "openai".
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
	Endpoint string `yaml:"endpoint"`
	// PauseOnBreak turns line breaks into short spoken pauses.
	PauseOnBreak bool          `yaml:"pauseOnBreak"`
	Timeout      time.Duration `yaml:"timeout"`
	// RateLimit caps gTTS chunk requests per second.
	RateLimit float64 `yaml:"rateLimit"`
}

type OpenAIConfig struct {
	APIKey      string `yaml:"apiKey"`
	BaseURL     string `yaml:"baseURL"`
	SpeechModel string `yaml:"speechModel"`
	Voice       string `yaml:"voice"`
}

func (t *TTSConfig) applyEnv() {
	envString(&t.Provider, "TTS_PROVIDER")
	envString(&t.Language, "TTS_LANGUAGE")
	envString(&t.Endpoint, "TTS_ENDPOINT")
	envBool(&t.PauseOnBreak, "TTS_PAUSE_ON_BREAK")
	envDuration(&t.Timeout, "TTS_TIMEOUT")
	envFloat(&t.RateLimit, "TTS_RATE_LIMIT")
}

func (o *OpenAIConfig) applyEnv() {
	envString(&o.APIKey, "OPENAI_API_KEY")
	envString(&o.BaseURL, "OPENAI_BASE_URL")
	envString(&o.SpeechModel, "OPENAI_SPEECH_MODEL")
	envString(&o.Voice, "OPENAI_VOICE")
}
