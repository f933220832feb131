package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dispatchkernel/internal/config"
	"dispatchkernel/internal/extract"
)

// LocalAITranscriber posts audio to a LocalAI server; no auth required.
type LocalAITranscriber struct {
	cfg *config.Settings
}

func (l *LocalAITranscriber) Transcribe(ctx context.Context, audioPath string) (TranscriptionResult, error) {
	return postTranscription(ctx, "LocalAI", l.cfg.LocalAIBaseURL+"/v1/audio/transcriptions",
		l.cfg.LocalAISTTModel, audioPath, "", l.cfg.Timeout())
}

// systemPrompt pins the chat backend to emitting one schema-shaped object.
const systemPrompt = "You are DispatchKernel. Extract a single JSON object only. " +
	"Do not include prose or code fences. Validate against the provided schema."

// LocalAIAnalyzer issues a single-turn system+user chat completion and
// recovers the JSON object from the first choice. One attempt only; a
// timeout or error status surfaces immediately.
type LocalAIAnalyzer struct {
	cfg *config.Settings
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (l *LocalAIAnalyzer) Analyze(ctx context.Context, _ Mode, text string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"model": l.cfg.LocalAIModel,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		"temperature": 0,
	})
	if err != nil {
		return nil, &Error{Message: "encode analysis request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.cfg.LocalAIBaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "build analysis request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: l.cfg.Timeout()}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Message: "LocalAI analysis request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, &Error{Message: fmt.Sprintf("LocalAI analysis failed: %s", strings.TrimSpace(string(raw)))}
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &Error{Message: "decode LocalAI analysis response", Cause: err}
	}
	if len(payload.Choices) == 0 {
		return nil, &Error{Message: "LocalAI response missing choices"}
	}

	return extract.FirstObject(payload.Choices[0].Message.Content)
}
