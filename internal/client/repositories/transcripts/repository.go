// Package transcripts is the client's Transcript Store: finished recordings
// keyed by owner, kept in insertion order.
package transcripts

import (
	"context"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
)

type Repository interface {
	Append(ctx context.Context, t *models.Transcript) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Transcript, error)
	// GetByID returns common.ErrorNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.Transcript, error)
	// DeleteByID and PatchByID are no-ops for unknown ids.
	DeleteByID(ctx context.Context, id string) error
	PatchByID(ctx context.Context, id string, patch models.TranscriptPatch) error
}
