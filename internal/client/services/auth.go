// Package services contains application services for the TalkScribe client.
// This file defines the Credential Store: local registration, sign-in under
// the configured policy and the persisted session snapshot.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/client/config"
	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/talkscribe/internal/client/repositories/users"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/dbx"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// seams for tests
var (
	hashPassword = func(password []byte) ([]byte, error) {
		return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	}
	newID = func() (uuid.UUID, error) { return uuid.NewV7() }
)

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("talkscribe-dummy-password"), bcrypt.MinCost)

// AuthService is the local credential store.
//
// Contract:
//   - Register: create a user; a taken email yields common.ErrDuplicateUser.
//   - Authenticate: sign in under the configured policy; a bad password (and,
//     under the strict policy, an unknown email) yields
//     common.ErrInvalidCredentials.
//   - CurrentSession / ClearSession: the persisted session snapshot.
//   - SaveTokens / LoadTokens: the server token pair of the current session.
//
// Empty email or password yields common.ErrMissingCredentials. Successful
// Register and Authenticate record the session snapshot.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CurrentSession(ctx context.Context) (*models.User, bool)
	ClearSession(ctx context.Context) error
	SaveTokens(ctx context.Context, t client.Tokens) error
	LoadTokens(ctx context.Context) client.Tokens
}

type authService struct {
	db     *sql.DB
	policy string
	now    func() time.Time
}

// NewAuthService constructs an AuthService over the local database. policy is
// config.PolicyStrict or config.PolicyAutoRegister.
func NewAuthService(db *sql.DB, policy string) AuthService {
	return &authService{db: db, policy: policy, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *authService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ErrMissingCredentials
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	hash, err := hashPassword(pw)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}

	user := &models.User{
		ID:        id.String(),
		Email:     email,
		Name:      common.NameFromEmail(email),
		CreatedAt: a.now().UTC(),
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := users.NewSQLiteRepository(tx).Create(ctx, user, hash); err != nil {
			return err
		}
		return saveSession(ctx, metadata.NewSQLiteRepository(tx), user)
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (a *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ErrMissingCredentials
	}

	userRepo := users.NewSQLiteRepository(a.db)
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	hash, err := userRepo.GetPasswordHash(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		if a.policy == config.PolicyAutoRegister {
			return a.Register(ctx, email, password)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, pw)
		return nil, common.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword(hash, pw) != nil {
		return nil, common.ErrInvalidCredentials
	}

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := saveSession(ctx, metadata.NewSQLiteRepository(a.db), user); err != nil {
		return nil, err
	}
	return user, nil
}

func saveSession(ctx context.Context, repo metadata.Repository, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return repo.Set(ctx, metadata.KeyCurrentUser, b)
}

// CurrentSession returns the signed-in user, if any. A snapshot whose user
// no longer exists locally is treated as no session.
func (a *authService) CurrentSession(ctx context.Context) (*models.User, bool) {
	b, err := metadata.NewSQLiteRepository(a.db).Get(ctx, metadata.KeyCurrentUser)
	if err != nil {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil || u.ID == "" {
		return nil, false
	}
	if _, err := users.NewSQLiteRepository(a.db).GetByID(ctx, u.ID); err != nil {
		return nil, false
	}
	return &u, true
}

// ClearSession forgets the session snapshot and the server tokens.
func (a *authService) ClearSession(ctx context.Context) error {
	return metadata.NewSQLiteRepository(a.db).Delete(ctx,
		metadata.KeyCurrentUser, metadata.KeyAccessToken, metadata.KeyRefreshToken)
}

func (a *authService) SaveTokens(ctx context.Context, t client.Tokens) error {
	repo := metadata.NewSQLiteRepository(a.db)
	if t.AccessToken == "" && t.RefreshToken == "" {
		return repo.Delete(ctx, metadata.KeyAccessToken, metadata.KeyRefreshToken)
	}
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(t.AccessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, []byte(t.RefreshToken))
	})
}

func (a *authService) LoadTokens(ctx context.Context) client.Tokens {
	repo := metadata.NewSQLiteRepository(a.db)
	access, _ := repo.Get(ctx, metadata.KeyAccessToken)
	refresh, _ := repo.Get(ctx, metadata.KeyRefreshToken)
	return client.Tokens{AccessToken: string(access), RefreshToken: string(refresh)}
}
