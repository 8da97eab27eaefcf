package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Create writes both the users and the credentials row. Callers wanting
// atomicity pass a transaction.
func (r *SQLiteRepository) Create(ctx context.Context, u *models.User, passwordHash []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO credentials (email, password_hash) VALUES (?, ?)`, u.Email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert credentials: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE `+where+` = ?`, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *SQLiteRepository) GetPasswordHash(ctx context.Context, email string) ([]byte, error) {
	var hash []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM credentials WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	return hash, nil
}
