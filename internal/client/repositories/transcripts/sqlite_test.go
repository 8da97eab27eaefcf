package transcripts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE transcripts (
  seq                INTEGER PRIMARY KEY AUTOINCREMENT,
  id                 TEXT NOT NULL UNIQUE,
  user_id            TEXT NOT NULL,
  title              TEXT NOT NULL,
  content            TEXT NOT NULL,
  translated_content TEXT,
  audio_duration     INTEGER NOT NULL DEFAULT 0,
  created_at         TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func rec(id, owner, content string) *models.Transcript {
	return &models.Transcript{
		ID:            id,
		UserID:        owner,
		Title:         "Recording " + id,
		Content:       content,
		AudioDuration: 7,
		CreatedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func ids(ts []*models.Transcript) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestAppendAndListByOwner_OrderAndIsolation(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, rec("t2", "alice", "first")))
	require.NoError(t, r.Append(ctx, rec("t1", "alice", "inserted second")))
	require.NoError(t, r.Append(ctx, rec("x1", "bob", "not alice's")))

	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t1"}, ids(got))
	for _, tr := range got {
		assert.Equal(t, "alice", tr.UserID)
		assert.Nil(t, tr.TranslatedContent)
		assert.Equal(t, 7, tr.AudioDuration)
	}

	none, err := r.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	tr := rec("t1", "alice", "hello world")
	translated := "hola mundo"
	tr.TranslatedContent = &translated
	require.NoError(t, r.Append(ctx, tr))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	require.NotNil(t, got.TranslatedContent)
	assert.Equal(t, "hola mundo", *got.TranslatedContent)
	assert.True(t, tr.CreatedAt.Equal(got.CreatedAt))

	_, err = r.GetByID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByID_RemovesAndMissingIsNoop(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, rec("t1", "alice", "a")))
	require.NoError(t, r.Append(ctx, rec("t2", "alice", "b")))

	require.NoError(t, r.DeleteByID(ctx, "t1"))
	require.NoError(t, r.DeleteByID(ctx, "t1"))
	require.NoError(t, r.DeleteByID(ctx, "never-existed"))

	got, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids(got))
}

func TestPatchByID_ShallowMerge(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, rec("t1", "alice", "hello")))

	translated := "hola"
	require.NoError(t, r.PatchByID(ctx, "t1", models.TranscriptPatch{TranslatedContent: &translated}))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "Recording t1", got.Title)
	require.NotNil(t, got.TranslatedContent)
	assert.Equal(t, "hola", *got.TranslatedContent)

	title := "Standup"
	require.NoError(t, r.PatchByID(ctx, "t1", models.TranscriptPatch{Title: &title}))
	got, err = r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "hola", *got.TranslatedContent)

	// absent id and empty patch are both no-ops
	require.NoError(t, r.PatchByID(ctx, "missing", models.TranscriptPatch{Title: &title}))
	require.NoError(t, r.PatchByID(ctx, "t1", models.TranscriptPatch{}))
}

func TestAppend_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := r.Append(context.Background(), rec("t1", "alice", "a"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to insert transcript")

	_, err = r.ListByOwner(context.Background(), "alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to select transcripts")
}
