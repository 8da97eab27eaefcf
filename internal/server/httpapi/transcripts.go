package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
)

type transcriptDTO struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	TranslatedContent *string   `json:"translated_content,omitempty"`
	AudioDuration     int       `json:"audio_duration"`
	HasAudio          bool      `json:"has_audio"`
	CreatedAt         time.Time `json:"created_at"`
}

type patchRequest struct {
	Title             *string `json:"title"`
	Content           *string `json:"content"`
	TranslatedContent *string `json:"translated_content"`
}

func toTranscriptDTO(t *models.Transcript) transcriptDTO {
	return transcriptDTO{
		ID:                t.ID,
		Title:             t.Title,
		Content:           t.Content,
		TranslatedContent: t.TranslatedContent,
		AudioDuration:     t.AudioDuration,
		HasAudio:          t.AudioKey != nil,
		CreatedAt:         t.CreatedAt,
	}
}

func (s *Server) handleListTranscripts(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	items, err := s.transcripts.List(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	out := make([]transcriptDTO, 0, len(items))
	for _, t := range items {
		out = append(out, toTranscriptDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	t, err := s.transcripts.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.transcriptError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTranscriptDTO(t))
}

func (s *Server) handlePatchTranscript(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := s.transcripts.Patch(r.Context(), userID, r.PathValue("id"), models.TranscriptPatch{
		Title:             req.Title,
		Content:           req.Content,
		TranslatedContent: req.TranslatedContent,
	})
	if err != nil {
		s.transcriptError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTranscriptDTO(t))
}

func (s *Server) handleDeleteTranscript(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := s.transcripts.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranscriptAudio(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := s.transcripts.AudioURL(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.transcriptError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) transcriptError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Transcript not found")
	case errors.Is(err, services.ErrNoAudio):
		writeError(w, http.StatusNotFound, "No audio for transcript")
	default:
		s.serverError(w, r, err)
	}
}
