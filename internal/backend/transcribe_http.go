package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OpenAI-compatible transcription endpoints share one multipart contract:
// a file field plus a model field, JSON back with at least "text".
func postTranscription(ctx context.Context, label, url, model, audioPath, bearer string, timeout time.Duration) (TranscriptionResult, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return TranscriptionResult{}, &Error{Message: "open audio file", Cause: err}
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err == nil {
		_, err = io.Copy(part, f)
	}
	if err == nil {
		err = w.WriteField("model", model)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return TranscriptionResult{}, &Error{Message: "build multipart request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return TranscriptionResult{}, &Error{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return TranscriptionResult{}, &Error{Message: label + " transcription request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return TranscriptionResult{}, &Error{
			Message: fmt.Sprintf("%s transcription failed: %s", label, strings.TrimSpace(string(raw))),
		}
	}

	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []any  `json:"segments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return TranscriptionResult{}, &Error{Message: "decode " + label + " transcription response", Cause: err}
	}

	out := TranscriptionResult{
		Text:     payload.Text,
		Language: payload.Language,
		Segments: payload.Segments,
	}
	out.Normalize()
	return out, nil
}
