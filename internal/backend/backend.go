// Package backend holds the uniform call contracts over the transcription
// and analysis implementations, plus their selection from settings.
package backend

import (
	"context"
	"fmt"
	"strings"

	"dispatchkernel/internal/config"
)

// Mode selects the analysis artifact shape.
type Mode string

const (
	ModeMetadata Mode = "metadata"
	ModeRollup   Mode = "rollup"
)

// ParseMode normalizes a user-supplied mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMetadata:
		return ModeMetadata, nil
	case ModeRollup:
		return ModeRollup, nil
	}
	return "", &UnsupportedError{Kind: "analysis mode", Value: s}
}

// UnsupportedError reports an enum selector outside the known set.
type UnsupportedError struct {
	Kind  string
	Value string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Unsupported %s: %s", e.Kind, e.Value)
}

// Error normalizes heterogeneous backend failures (missing credential,
// transport error, non-2xx status, empty response) into one channel.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// TranscriptionResult is the common shape both transcription backends are
// normalized into. Confidence and duration stay null: neither upstream
// currently reports them, and pretending otherwise would be worse than the
// known limitation.
type TranscriptionResult struct {
	Text       string   `json:"text"`
	Language   string   `json:"language"`
	Confidence *float64 `json:"confidence"`
	DurationS  *float64 `json:"duration_s"`
	Segments   []any    `json:"segments"`
}

// Normalize guarantees segments marshal as an array even when the backend
// omitted them.
func (t *TranscriptionResult) Normalize() {
	if t.Segments == nil {
		t.Segments = []any{}
	}
}

// Transcriber converts an audio file into the common transcription shape.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (TranscriptionResult, error)
}

// Analyzer produces a raw analysis object for one mode. Callers validate
// the object against the published schema before returning it anywhere.
type Analyzer interface {
	Analyze(ctx context.Context, mode Mode, text string) (map[string]any, error)
}

// NewTranscriber resolves the transcription backend. Selection is a pure
// function of settings, resolved once per invocation.
func NewTranscriber(cfg *config.Settings) (Transcriber, error) {
	switch cfg.TranscribeBackend {
	case "openai":
		return &OpenAITranscriber{cfg: cfg}, nil
	case "localai":
		return &LocalAITranscriber{cfg: cfg}, nil
	}
	return nil, &UnsupportedError{Kind: "TRANSCRIBE_BACKEND", Value: cfg.TranscribeBackend}
}

// NewAnalyzer resolves the analysis backend the same way.
func NewAnalyzer(cfg *config.Settings) (Analyzer, error) {
	switch cfg.AnalyzeBackend {
	case "stub":
		return &StubAnalyzer{cfg: cfg}, nil
	case "localai":
		return &LocalAIAnalyzer{cfg: cfg}, nil
	}
	return nil, &UnsupportedError{Kind: "ANALYZE_BACKEND", Value: cfg.AnalyzeBackend}
}
