// Package pipeline drives one invocation: validate input, call the selected
// backend, extract, validate, return. Each invocation is a linear sequence
// with no retries; the first failure propagates untouched to the envelope.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"dispatchkernel/internal/backend"
	"dispatchkernel/internal/config"
	"dispatchkernel/internal/schema"
)

// NotFoundError reports a missing or non-regular input file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "Input file not found: " + e.Path }

// Runner carries the per-invocation settings and log entry. It holds no
// mutable state; a wrapping server would construct one Runner per request.
type Runner struct {
	cfg *config.Settings
	log *logrus.Entry
}

func New(cfg *config.Settings, log *logrus.Entry) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Result is the composed pipeline payload: all three stages or nothing.
type Result struct {
	Transcription backend.TranscriptionResult `json:"transcription"`
	Metadata      map[string]any              `json:"metadata"`
	Rollup        map[string]any              `json:"rollup"`
}

func ensureFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &NotFoundError{Path: path}
	}
	return nil
}

// Transcribe validates the input, calls the selected transcription backend
// and normalizes the payload. Transcription has no published schema; only
// the five-field shape applies.
func (r *Runner) Transcribe(ctx context.Context, audioPath string) (backend.TranscriptionResult, error) {
	if err := ensureFile(audioPath); err != nil {
		return backend.TranscriptionResult{}, err
	}
	tr, err := backend.NewTranscriber(r.cfg)
	if err != nil {
		return backend.TranscriptionResult{}, err
	}
	r.log.WithField("backend", r.cfg.TranscribeBackend).Debug("transcribing")
	res, err := tr.Transcribe(ctx, audioPath)
	if err != nil {
		return backend.TranscriptionResult{}, err
	}
	res.Normalize()
	return res, nil
}

// AnalyzeText runs one analysis mode over transcript text. Stub output is
// validated too: the schema check guards regressions in the stub itself.
func (r *Runner) AnalyzeText(ctx context.Context, text string, mode backend.Mode) (map[string]any, error) {
	an, err := backend.NewAnalyzer(r.cfg)
	if err != nil {
		return nil, err
	}
	return r.analyzeWith(ctx, an, text, mode)
}

// Analyze reads the transcript file and runs AnalyzeText over its content.
func (r *Runner) Analyze(ctx context.Context, inputPath string, mode backend.Mode) (map[string]any, error) {
	if err := ensureFile(inputPath); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return r.AnalyzeText(ctx, string(raw), mode)
}

// Run composes transcribe, analyze(metadata) and analyze(rollup) over the
// transcribed text. Any stage failure aborts the whole run: no partial
// output, no retry of earlier stages. The analyzer is resolved once and
// reused for both modes.
func (r *Runner) Run(ctx context.Context, audioPath string) (*Result, error) {
	transcription, err := r.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	an, err := backend.NewAnalyzer(r.cfg)
	if err != nil {
		return nil, err
	}
	metadata, err := r.analyzeWith(ctx, an, transcription.Text, backend.ModeMetadata)
	if err != nil {
		return nil, err
	}
	rollup, err := r.analyzeWith(ctx, an, transcription.Text, backend.ModeRollup)
	if err != nil {
		return nil, err
	}
	return &Result{Transcription: transcription, Metadata: metadata, Rollup: rollup}, nil
}

func (r *Runner) analyzeWith(ctx context.Context, an backend.Analyzer, text string, mode backend.Mode) (map[string]any, error) {
	r.log.WithFields(logrus.Fields{
		"backend": r.cfg.AnalyzeBackend,
		"mode":    string(mode),
	}).Debug("analyzing")

	result, err := an.Analyze(ctx, mode, text)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(result, string(mode)); err != nil {
		return nil, err
	}
	return result, nil
}
