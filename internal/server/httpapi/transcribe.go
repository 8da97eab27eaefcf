package httpapi

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/asr"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	ID         string `json:"id"`
}

// handleTranscribe relays the multipart "audio" part to the hosted model and
// saves the result as a transcript of the caller. requireAuth has already run.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserIDFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "No audio file provided")
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorDetails(w, http.StatusRequestEntityTooLarge, "Audio file too large",
				"limit is "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.serverError(w, r, err)
		return
	}
	defer file.Close()

	apiKey := s.getenv(s.asrKeyEnv)
	if apiKey == "" {
		writeError(w, http.StatusInternalServerError,
			"Missing Hugging Face API key. Set "+s.asrKeyEnv+" in the server environment")
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	start := time.Now()
	text, err := s.asr.Transcribe(ctx, apiKey, audio)
	s.metrics.ASRDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		var upstream *asr.UpstreamError
		if errors.As(err, &upstream) {
			s.asrRequest(r, "upstream_error")
			s.logger.Warn(ctx, "ASR upstream rejected request", "status", upstream.StatusCode)
			writeErrorDetails(w, http.StatusInternalServerError, "ASR request failed", upstream.Body)
			return
		}
		s.asrRequest(r, "error")
		s.serverError(w, r, err)
		return
	}
	s.asrRequest(r, "ok")

	created, err := s.transcripts.Create(ctx, userID, services.NewTranscript{
		Content:         text,
		DurationSeconds: parseDuration(r.FormValue("duration")),
		Audio:           audio,
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.TranscriptsCreated.Add(ctx, 1)

	writeJSON(w, http.StatusOK, transcribeResponse{Transcript: text, ID: created.ID})
}

// parseDuration accepts whole or fractional seconds; anything else is 0.
func parseDuration(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && !math.IsInf(f, 0) {
		return int(math.Round(f))
	}
	return 0
}

func (s *Server) asrRequest(r *http.Request, status string) {
	s.metrics.ASRRequests.Add(r.Context(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeErrorDetails(w, http.StatusInternalServerError, "Server error", err.Error())
}
