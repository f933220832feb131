package backend

import (
	"context"

	"dispatchkernel/internal/config"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAITranscriber calls the hosted OpenAI transcription API.
type OpenAITranscriber struct {
	cfg *config.Settings

	// baseURL overrides the hosted endpoint in tests.
	baseURL string
}

func (o *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (TranscriptionResult, error) {
	if o.cfg.OpenAIAPIKey == "" {
		return TranscriptionResult{}, &Error{Message: "OPENAI_API_KEY is required for OpenAI transcription"}
	}
	base := o.baseURL
	if base == "" {
		base = openAIBaseURL
	}
	return postTranscription(ctx, "OpenAI", base+"/audio/transcriptions",
		o.cfg.OpenAISTTModel, audioPath, o.cfg.OpenAIAPIKey, o.cfg.Timeout())
}
