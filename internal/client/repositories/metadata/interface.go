// Package metadata stores small client-side key/value settings such as the
// current session snapshot and the server tokens.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyCurrentUser  = "current_user"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Repository is a key/value store. Get returns common.ErrorNotFound for an
// unknown key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
