package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/dbx"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
)

const columns = `id, user_id, title, content, translated_content, audio_duration, audio_key, created_at`

// PostgresRepository implements transcript storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscript(row scanner) (*models.Transcript, error) {
	t := &models.Transcript{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Content, &t.TranslatedContent,
		&t.AudioDuration, &t.AudioKey, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transcript) (*models.Transcript, error) {
	query := `
		INSERT INTO transcripts (id, user_id, title, content, translated_content, audio_duration, audio_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Content, t.TranslatedContent, t.AudioDuration, t.AudioKey).Scan(&t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, q string) ([]*models.Transcript, error) {
	query := `SELECT ` + columns + ` FROM transcripts
		WHERE user_id = $1
		AND ($2 = '' OR strpos(lower(title), lower($2)) > 0 OR strpos(lower(content), lower($2)) > 0)
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, q)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Transcript, error) {
	query := `SELECT ` + columns + ` FROM transcripts
		WHERE id = $1 AND user_id = $2
	`
	t, err := scanTranscript(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Patch applies the non-nil fields of patch. Missing records yield
// common.ErrorNotFound.
func (r *PostgresRepository) Patch(ctx context.Context, userID, id string, patch models.TranscriptPatch) (*models.Transcript, error) {
	query := `UPDATE transcripts SET
			title = COALESCE($3, title),
			content = COALESCE($4, content),
			translated_content = COALESCE($5, translated_content),
			audio_key = COALESCE($6, audio_key)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns

	t, err := scanTranscript(r.db.QueryRowContext(ctx, query, id, userID,
		patch.Title, patch.Content, patch.TranslatedContent, patch.AudioKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (*models.Transcript, error) {
	query := `DELETE FROM transcripts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns

	t, err := scanTranscript(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
