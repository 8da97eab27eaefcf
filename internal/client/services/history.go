package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/translate"
)

// Translator is the translation relay as the history view uses it.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// HistoryService is the read side over the Transcript Store for the signed-in
// user, plus the per-record actions the history view offers.
type HistoryService struct {
	auth        AuthService
	transcripts *TranscriptService
	translator  Translator
}

func NewHistoryService(auth AuthService, ts *TranscriptService, tr Translator) *HistoryService {
	return &HistoryService{auth: auth, transcripts: ts, translator: tr}
}

func (h *HistoryService) owner(ctx context.Context) (string, error) {
	u, ok := h.auth.CurrentSession(ctx)
	if !ok {
		return "", ErrNoSession
	}
	return u.ID, nil
}

// Search lists the user's transcripts whose title or content contains query,
// ignoring case. A blank query matches everything.
func (h *HistoryService) Search(ctx context.Context, query string) ([]*models.Transcript, error) {
	ownerID, err := h.owner(ctx)
	if err != nil {
		return nil, err
	}

	all, err := h.transcripts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	var out []*models.Transcript
	for _, t := range all {
		if common.ContainsFold(t.Title, query) || common.ContainsFold(t.Content, query) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (h *HistoryService) Detail(ctx context.Context, id string) (*models.Transcript, error) {
	ownerID, err := h.owner(ctx)
	if err != nil {
		return nil, err
	}
	return h.transcripts.Get(ctx, ownerID, id)
}

// Delete removes one of the user's transcripts. Unknown ids and records of
// other users are ignored.
func (h *HistoryService) Delete(ctx context.Context, id string) error {
	if _, err := h.Detail(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return h.transcripts.DeleteByID(ctx, id)
}

// Rename sets a new title on one of the user's transcripts.
func (h *HistoryService) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title must not be empty")
	}
	if _, err := h.Detail(ctx, id); err != nil {
		return err
	}
	return h.transcripts.PatchByID(ctx, id, models.TranscriptPatch{Title: &title})
}

// Translate translates a stored transcript into target and records the
// result on it. A failure placeholder is returned but never stored, so an
// earlier translation survives.
func (h *HistoryService) Translate(ctx context.Context, id, target string) (string, error) {
	t, err := h.Detail(ctx, id)
	if err != nil {
		return "", err
	}

	out := h.translator.Translate(ctx, t.Content, target)
	if translate.IsPlaceholder(out) {
		return out, nil
	}
	if err := h.transcripts.PatchByID(ctx, id, models.TranscriptPatch{TranslatedContent: &out}); err != nil {
		return "", err
	}
	return out, nil
}
