package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Settings is built once per invocation and handed read-only through the
// call graph. Only the tagged variables are consulted; anything else in the
// process environment is ignored.
type Settings struct {
	TranscribeBackend string `env:"TRANSCRIBE_BACKEND" env-default:"openai"`
	AnalyzeBackend    string `env:"ANALYZE_BACKEND" env-default:"localai"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAISTTModel    string `env:"OPENAI_STT_MODEL" env-default:"gpt-4o-transcribe"`
	LocalAISTTModel   string `env:"LOCALAI_STT_MODEL" env-default:"whisper-1"`
	LocalAIBaseURL    string `env:"LOCALAI_BASE_URL" env-default:"http://localhost:8080"`
	LocalAIModel      string `env:"LOCALAI_MODEL" env-default:"gpt-4o-mini"`
	LocalAITimeoutS   int    `env:"LOCALAI_TIMEOUT_S" env-default:"45"`
	DefaultTimezone   string `env:"DEFAULT_TIMEZONE" env-default:"America/New_York"`
}

// Load reads the allow-listed environment into a Settings value, failing
// fast on malformed numeric fields before any network call is attempted.
func Load() (*Settings, error) {
	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if s.LocalAITimeoutS <= 0 {
		return nil, fmt.Errorf("LOCALAI_TIMEOUT_S must be a positive integer, got %d", s.LocalAITimeoutS)
	}

	// Backend selectors are compared lower-cased; the base URL loses
	// trailing slashes so later path concatenation stays consistent.
	s.TranscribeBackend = strings.ToLower(strings.TrimSpace(s.TranscribeBackend))
	s.AnalyzeBackend = strings.ToLower(strings.TrimSpace(s.AnalyzeBackend))
	s.LocalAIBaseURL = strings.TrimRight(s.LocalAIBaseURL, "/")
	return &s, nil
}

// Timeout bounds every remote transcription and analysis call.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.LocalAITimeoutS) * time.Second
}
