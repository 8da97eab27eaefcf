// Package transcripts declares the server-side storage contract for saved
// transcripts. Every operation is scoped to the owning user.
package transcripts

import (
	"context"

	"github.com/dmitrijs2005/talkscribe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transcript) (*models.Transcript, error)

	// ListByOwner returns userID's transcripts in creation order. A non-empty
	// query keeps only records whose title or content contains it, ignoring case.
	ListByOwner(ctx context.Context, userID string, query string) ([]*models.Transcript, error)

	// Get returns common.ErrorNotFound when the record is absent or owned by
	// someone else.
	Get(ctx context.Context, userID, id string) (*models.Transcript, error)

	Patch(ctx context.Context, userID, id string, patch models.TranscriptPatch) (*models.Transcript, error)

	// Delete removes the record and returns it. A missing record yields
	// (nil, nil).
	Delete(ctx context.Context, userID, id string) (*models.Transcript, error)
}
