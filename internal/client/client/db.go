package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/talkscribe/internal/client/migrations"
	"github.com/dmitrijs2005/talkscribe/internal/filex"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = goose.UpContext

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite store at dsn and
// migrates it. A single connection is used: SQLite allows one writer anyway.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
