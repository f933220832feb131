package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// allowList mirrors the tagged variables so tests can start from a clean
// environment. t.Setenv registers restoration, then os.Unsetenv clears the
// value for the duration of the test.
var allowList = []string{
	"TRANSCRIBE_BACKEND",
	"ANALYZE_BACKEND",
	"OPENAI_API_KEY",
	"OPENAI_STT_MODEL",
	"LOCALAI_STT_MODEL",
	"LOCALAI_BASE_URL",
	"LOCALAI_MODEL",
	"LOCALAI_TIMEOUT_S",
	"DEFAULT_TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allowList {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TranscribeBackend != "openai" {
		t.Errorf("TranscribeBackend = %q", s.TranscribeBackend)
	}
	if s.AnalyzeBackend != "localai" {
		t.Errorf("AnalyzeBackend = %q", s.AnalyzeBackend)
	}
	if s.OpenAISTTModel != "gpt-4o-transcribe" {
		t.Errorf("OpenAISTTModel = %q", s.OpenAISTTModel)
	}
	if s.LocalAISTTModel != "whisper-1" {
		t.Errorf("LocalAISTTModel = %q", s.LocalAISTTModel)
	}
	if s.LocalAIBaseURL != "http://localhost:8080" {
		t.Errorf("LocalAIBaseURL = %q", s.LocalAIBaseURL)
	}
	if s.LocalAIModel != "gpt-4o-mini" {
		t.Errorf("LocalAIModel = %q", s.LocalAIModel)
	}
	if s.LocalAITimeoutS != 45 {
		t.Errorf("LocalAITimeoutS = %d", s.LocalAITimeoutS)
	}
	if s.DefaultTimezone != "America/New_York" {
		t.Errorf("DefaultTimezone = %q", s.DefaultTimezone)
	}
	if s.Timeout() != 45*time.Second {
		t.Errorf("Timeout = %v", s.Timeout())
	}
}

func TestLoadNormalizesSelectorsAndURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSCRIBE_BACKEND", "  LocalAI ")
	t.Setenv("ANALYZE_BACKEND", "STUB")
	t.Setenv("LOCALAI_BASE_URL", "http://inference:9090///")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TranscribeBackend != "localai" {
		t.Errorf("TranscribeBackend = %q", s.TranscribeBackend)
	}
	if s.AnalyzeBackend != "stub" {
		t.Errorf("AnalyzeBackend = %q", s.AnalyzeBackend)
	}
	if s.LocalAIBaseURL != "http://inference:9090" {
		t.Errorf("LocalAIBaseURL = %q", s.LocalAIBaseURL)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
		{"float", "4.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOCALAI_TIMEOUT_S", tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted LOCALAI_TIMEOUT_S=%q", tc.value)
			}
		})
	}
}

func TestLoadIgnoresUnlistedVariables(t *testing.T) {
	clearEnv(t)
	// Near-miss names must not leak into settings.
	t.Setenv("LOCALAI_TIMEOUT", "not-a-number")
	t.Setenv("TRANSCRIBE_BACKEND_EXTRA", "bogus")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LocalAITimeoutS != 45 || s.TranscribeBackend != "openai" {
		t.Fatalf("unlisted variables leaked into settings: %+v", s)
	}
}

func TestLoadErrorMentionsField(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCALAI_TIMEOUT_S", "0")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "LOCALAI_TIMEOUT_S") {
		t.Fatalf("error should name the offending variable: %v", err)
	}
}
