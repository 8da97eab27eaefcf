// Package users persists local accounts and their password verifiers.
package users

import (
	"context"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
)

// Repository stores users together with their credential record.
// Lookups of unknown users return common.ErrorNotFound.
type Repository interface {
	// Create inserts the user and its password hash. A taken email yields
	// common.ErrDuplicateUser.
	Create(ctx context.Context, u *models.User, passwordHash []byte) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetPasswordHash(ctx context.Context, email string) ([]byte, error)
}
