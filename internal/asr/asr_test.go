package asr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Transcribe(t *testing.T) {
	audio := []byte("RIFF0000WAVEfmt ")

	t.Run("returns text and forwards headers", func(t *testing.T) {
		var gotAuth, gotCT string
		var gotBody []byte
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"text":" hello there"}`))
		}))
		defer ts.Close()

		text, err := NewClient(ts.Client(), ts.URL).Transcribe(context.Background(), "hf_key", audio)
		require.NoError(t, err)
		assert.Equal(t, " hello there", text)
		assert.Equal(t, "Bearer hf_key", gotAuth)
		assert.Equal(t, "audio/wav", gotCT)
		assert.Equal(t, audio, gotBody)
	})

	t.Run("missing text -> sentinel", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chunks":[]}`))
		}))
		defer ts.Close()

		text, err := NewClient(nil, ts.URL).Transcribe(context.Background(), "k", audio)
		require.NoError(t, err)
		assert.Equal(t, NoResult, text)
	})

	t.Run("non-2xx -> UpstreamError with body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is loading"}`))
		}))
		defer ts.Close()

		_, err := NewClient(nil, ts.URL).Transcribe(context.Background(), "k", audio)
		var ue *UpstreamError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
		assert.Equal(t, `{"error":"Model is loading"}`, ue.Body)
	})

	t.Run("non-json body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer ts.Close()

		_, err := NewClient(nil, ts.URL).Transcribe(context.Background(), "k", audio)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := NewClient(nil, ts.URL).Transcribe(context.Background(), "k", audio)
		require.Error(t, err)
		var ue *UpstreamError
		assert.False(t, errors.As(err, &ue))
	})
}
