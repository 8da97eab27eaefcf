// Package repomanager hands out repositories bound to either a connection
// pool or a transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/talkscribe/internal/dbx"
	"github.com/dmitrijs2005/talkscribe/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/talkscribe/internal/server/repositories/transcripts"
	"github.com/dmitrijs2005/talkscribe/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Transcripts(db dbx.DBTX) transcripts.Repository
}
