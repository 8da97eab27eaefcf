package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/dbx"
)

const selectColumns = `id, user_id, title, content, translated_content, audio_duration, created_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscript(s scanner) (*models.Transcript, error) {
	t := &models.Transcript{}
	var translated sql.NullString
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Content, &translated, &t.AudioDuration, &t.CreatedAt); err != nil {
		return nil, err
	}
	if translated.Valid {
		t.TranslatedContent = &translated.String
	}
	return t, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, t *models.Transcript) error {
	query := `INSERT INTO transcripts (id, user_id, title, content, translated_content, audio_duration, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Content, t.TranslatedContent, t.AudioDuration, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's transcripts oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Transcript, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transcripts WHERE user_id = ? ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transcripts: %w", err)
	}
	defer rows.Close()

	var result []*models.Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Transcript, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transcripts WHERE id = ?`, id)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PatchByID(ctx context.Context, id string, p models.TranscriptPatch) error {
	if p.Empty() {
		return nil
	}
	query := `UPDATE transcripts SET
				title = COALESCE(?, title),
				content = COALESCE(?, content),
				translated_content = COALESCE(?, translated_content)
			WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, p.Title, p.Content, p.TranslatedContent, id); err != nil {
		return fmt.Errorf("failed to patch transcript: %w", err)
	}
	return nil
}
