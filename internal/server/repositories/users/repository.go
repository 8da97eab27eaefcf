package users

import (
	"context"

	"github.com/dmitrijs2005/talkscribe/internal/server/models"
)

type Repository interface {
	// Create inserts user. A second account for the same email yields
	// common.ErrDuplicateUser.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
