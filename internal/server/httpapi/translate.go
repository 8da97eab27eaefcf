package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/talkscribe/internal/translate"
)

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translated string `json:"translated"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target := strings.TrimSpace(req.Target)
	if target == "" {
		target = translate.DefaultLanguage
	}
	if !translate.IsSupported(target) {
		writeError(w, http.StatusBadRequest, "Unsupported target language")
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{Translated: s.translator.Translate(r.Context(), req.Text, target)})
}
