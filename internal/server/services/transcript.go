package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/events"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	"github.com/dmitrijs2005/talkscribe/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrNoAudio is returned when a transcript has no archived recording.
var ErrNoAudio = errors.New("no audio archived for transcript")

var newTranscriptID = func() (uuid.UUID, error) { return uuid.NewV7() }

// NewTranscript is the input for TranscriptService.Create.
type NewTranscript struct {
	Content           string
	TranslatedContent *string
	DurationSeconds   int
	// Audio, when non-empty and a store is configured, is archived.
	Audio []byte
}

// TranscriptService owns the per-user transcript records and their archived
// audio.
type TranscriptService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audio       AudioStore
	publisher   events.Publisher
	logger      logging.Logger
	now         func() time.Time
}

// NewTranscriptService wires the service. A nil audio store disables
// archiving; a nil publisher discards events.
func NewTranscriptService(db *sql.DB, m repomanager.RepositoryManager, audio AudioStore,
	publisher events.Publisher, logger logging.Logger) *TranscriptService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TranscriptService{
		db:          db,
		repomanager: m,
		audio:       audio,
		publisher:   publisher,
		logger:      logger.With("module", "transcripts"),
		now:         time.Now,
	}
}

// Create persists a transcript for userID titled "Recording <local time>".
// Archiving and event publication are best effort: their failures are logged
// and do not fail the call.
func (s *TranscriptService) Create(ctx context.Context, userID string, in NewTranscript) (*models.Transcript, error) {
	id, err := newTranscriptID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}
	if in.DurationSeconds < 0 {
		in.DurationSeconds = 0
	}

	t := &models.Transcript{
		ID:                id.String(),
		UserID:            userID,
		Title:             common.MakeTitle(s.now()),
		Content:           in.Content,
		TranslatedContent: in.TranslatedContent,
		AudioDuration:     in.DurationSeconds,
	}

	if s.audio != nil && len(in.Audio) > 0 {
		key := NewAudioKey(userID)
		if err := s.audio.Put(ctx, key, in.Audio, "audio/wav"); err != nil {
			s.logger.Warn(ctx, "audio archive failed", "error", err)
		} else {
			t.AudioKey = &key
		}
	}

	created, err := s.repomanager.Transcripts(s.db).Create(ctx, t)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.TranscriptCreated(ctx, events.TranscriptEvent{
		ID:        created.ID,
		UserID:    created.UserID,
		Title:     created.Title,
		Content:   created.Content,
		Duration:  created.AudioDuration,
		Timestamp: created.CreatedAt,
	}); err != nil {
		s.logger.Warn(ctx, "publish transcript created failed", "id", created.ID, "error", err)
	}

	return created, nil
}

// List returns userID's transcripts in creation order, filtered by a
// case-insensitive substring over title and content when q is non-empty.
func (s *TranscriptService) List(ctx context.Context, userID, q string) ([]*models.Transcript, error) {
	return s.repomanager.Transcripts(s.db).ListByOwner(ctx, userID, strings.TrimSpace(q))
}

func (s *TranscriptService) Get(ctx context.Context, userID, id string) (*models.Transcript, error) {
	return s.repomanager.Transcripts(s.db).Get(ctx, userID, id)
}

// Patch applies the non-nil fields. The audio key is not client-writable.
func (s *TranscriptService) Patch(ctx context.Context, userID, id string, patch models.TranscriptPatch) (*models.Transcript, error) {
	patch.AudioKey = nil
	repo := s.repomanager.Transcripts(s.db)
	if patch.Empty() {
		return repo.Get(ctx, userID, id)
	}
	return repo.Patch(ctx, userID, id, patch)
}

// Delete removes the transcript and its archived audio. Deleting a missing
// record is not an error.
func (s *TranscriptService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repomanager.Transcripts(s.db).Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if deleted == nil {
		return nil
	}

	if deleted.AudioKey != nil && s.audio != nil {
		if err := s.audio.Delete(ctx, *deleted.AudioKey); err != nil {
			s.logger.Warn(ctx, "audio delete failed", "key", *deleted.AudioKey, "error", err)
		}
	}

	if err := s.publisher.TranscriptDeleted(ctx, events.TranscriptEvent{
		ID:        deleted.ID,
		UserID:    deleted.UserID,
		Timestamp: s.now(),
	}); err != nil {
		s.logger.Warn(ctx, "publish transcript deleted failed", "id", deleted.ID, "error", err)
	}
	return nil
}

// AudioURL returns a presigned GET URL for the archived recording of a
// transcript, or ErrNoAudio.
func (s *TranscriptService) AudioURL(ctx context.Context, userID, id string) (string, error) {
	t, err := s.repomanager.Transcripts(s.db).Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if t.AudioKey == nil || s.audio == nil {
		return "", ErrNoAudio
	}
	return s.audio.PresignGet(ctx, *t.AudioKey)
}
