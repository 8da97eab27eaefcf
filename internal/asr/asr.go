// Package asr calls a hosted speech-to-text model over HTTP. The request body
// is the raw recorded WAV blob; the model answers with {"text": "..."}.
package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	DefaultModelURL = "https://api-inference.huggingface.co/models/openai/whisper-large-v3"

	// NoResult is the transcript reported when the model returns no text.
	NoResult = "No transcription result."
)

// ErrInvalidResponse is returned when the model answers 2xx with a body that
// is not JSON.
var ErrInvalidResponse = errors.New("invalid ASR response")

// UpstreamError carries a non-2xx answer from the model verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ASR request failed: status %d: %s", e.StatusCode, e.Body)
}

// Client posts audio to a single model endpoint.
type Client struct {
	http     *http.Client
	modelURL string
}

// NewClient returns a Client for modelURL. A nil httpClient uses a fresh
// http.Client.
func NewClient(httpClient *http.Client, modelURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if modelURL == "" {
		modelURL = DefaultModelURL
	}
	return &Client{http: httpClient, modelURL: modelURL}
}

// Transcribe forwards audio with Content-Type audio/wav and the bearer apiKey.
// An empty "text" field yields NoResult rather than an error.
func (c *Client) Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !gjson.ValidBytes(body) {
		return "", ErrInvalidResponse
	}

	if text := gjson.GetBytes(body, "text"); text.Type == gjson.String && text.Str != "" {
		return text.Str, nil
	}
	return NoResult, nil
}
