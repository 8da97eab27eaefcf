package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/client/repositories/transcripts"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/translate"
)

// ErrNoSession is returned when an operation needs a signed-in user.
var ErrNoSession = errors.New("not logged in")

// TranscriptService is the client Transcript Store.
type TranscriptService struct {
	repo transcripts.Repository
	log  logging.Logger
	now  func() time.Time
}

func NewTranscriptService(db *sql.DB, log logging.Logger) *TranscriptService {
	return &TranscriptService{
		repo: transcripts.NewSQLiteRepository(db),
		log:  log.With("module", "transcripts"),
		now:  time.Now,
	}
}

// Append stores a new transcript for ownerID and returns it with its id and
// creation time filled in. An empty title gets the default "Recording ..."
// title.
func (s *TranscriptService) Append(ctx context.Context, ownerID, title, content string,
	durationSeconds int, translated *string) (*models.Transcript, error) {

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}

	now := s.now()
	if title == "" {
		title = common.MakeTitle(now)
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	t := &models.Transcript{
		ID:                id.String(),
		UserID:            ownerID,
		Title:             title,
		Content:           content,
		TranslatedContent: translated,
		AudioDuration:     durationSeconds,
		CreatedAt:         now,
	}
	if err := s.repo.Append(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "transcript saved", "id", t.ID, "duration", durationSeconds)
	return t, nil
}

func (s *TranscriptService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Transcript, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the transcript only when ownerID owns it.
func (s *TranscriptService) Get(ctx context.Context, ownerID, id string) (*models.Transcript, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (s *TranscriptService) DeleteByID(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *TranscriptService) PatchByID(ctx context.Context, id string, p models.TranscriptPatch) error {
	return s.repo.PatchByID(ctx, id, p)
}

// SessionSaver persists recordings for whoever is signed in. It satisfies
// recorder.Saver.
type SessionSaver struct {
	Auth        AuthService
	Transcripts *TranscriptService
}

func (s *SessionSaver) Save(ctx context.Context, text, translated string, durationSeconds int) (string, error) {
	user, ok := s.Auth.CurrentSession(ctx)
	if !ok {
		return "", ErrNoSession
	}

	var tr *string
	if strings.TrimSpace(translated) != "" && !translate.IsPlaceholder(translated) {
		tr = &translated
	}

	t, err := s.Transcripts.Append(ctx, user.ID, "", text, durationSeconds, tr)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}
