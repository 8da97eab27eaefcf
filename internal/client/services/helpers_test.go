package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	orig := hashPassword
	hashPassword = func(p []byte) ([]byte, error) { return bcrypt.GenerateFromPassword(p, bcrypt.MinCost) }
	t.Cleanup(func() { hashPassword = orig })

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeTranslator struct {
	calls []string
	// fixed, when set, is returned instead of the prefixed text.
	fixed string
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) string {
	f.calls = append(f.calls, target+"|"+text)
	if f.fixed != "" {
		return f.fixed
	}
	return "[" + target + "] " + text
}
