package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/dbx"
	"github.com/dmitrijs2005/talkscribe/internal/events"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/talkscribe/internal/server/repositories/refreshtokens"
	transcriptsrepo "github.com/dmitrijs2005/talkscribe/internal/server/repositories/transcripts"
	usersrepo "github.com/dmitrijs2005/talkscribe/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	created []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr error

	createErr error
	created   []string
	deleted   []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.delErr
}

// fakeTranscriptsRepo keeps records in insertion order.
type fakeTranscriptsRepo struct {
	mu      sync.Mutex
	items   []*models.Transcript
	failErr error
}

func (f *fakeTranscriptsRepo) Create(ctx context.Context, t *models.Transcript) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	t.CreatedAt = time.Now()
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTranscriptsRepo) ListByOwner(ctx context.Context, userID string, q string) ([]*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []*models.Transcript
	for _, t := range f.items {
		if t.UserID != userID {
			continue
		}
		if q != "" && !common.ContainsFold(t.Title, q) && !common.ContainsFold(t.Content, q) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTranscriptsRepo) find(userID, id string) (int, *models.Transcript) {
	for i, t := range f.items {
		if t.ID == id && t.UserID == userID {
			return i, t
		}
	}
	return -1, nil
}

func (f *fakeTranscriptsRepo) Get(ctx context.Context, userID, id string) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, t := f.find(userID, id); t != nil {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTranscriptsRepo) Patch(ctx context.Context, userID, id string, p models.TranscriptPatch) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, t := f.find(userID, id)
	if t == nil {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.TranslatedContent != nil {
		t.TranslatedContent = p.TranslatedContent
	}
	if p.AudioKey != nil {
		t.AudioKey = p.AudioKey
	}
	return t, nil
}

func (f *fakeTranscriptsRepo) Delete(ctx context.Context, userID, id string) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, t := f.find(userID, id)
	if t == nil {
		return nil, nil
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return t, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	tr *fakeTranscriptsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Transcripts(db dbx.DBTX) transcriptsrepo.Repository     { return m.tr }

type recordingPublisher struct {
	mu      sync.Mutex
	created []events.TranscriptEvent
	deleted []events.TranscriptEvent
	err     error
}

func (p *recordingPublisher) TranscriptCreated(_ context.Context, ev events.TranscriptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, ev)
	return p.err
}

func (p *recordingPublisher) TranscriptDeleted(_ context.Context, ev events.TranscriptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }
