package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/observe"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	logoutErr   error
	// tokens maps access tokens to user ids.
	tokens map[string]string
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	return &models.User{ID: "u1", Email: email, Name: common.NameFromEmail(email)},
		&services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &models.User{ID: "u1", Email: email}, &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil
}

func (f *fakeUsers) Logout(context.Context, string) error { return f.logoutErr }

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Email: id + "@example.com"}, nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	if token == "expired" {
		return "", common.ErrTokenExpired
	}
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", common.ErrInvalidToken
}

type fakeTranscripts struct {
	mu        sync.Mutex
	items     []*models.Transcript
	created   []services.NewTranscript
	createErr error
	seq       int
}

func (f *fakeTranscripts) Create(_ context.Context, userID string, in services.NewTranscript) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	t := &models.Transcript{
		ID:            "t" + string(rune('0'+f.seq)),
		UserID:        userID,
		Title:         common.MakeTitle(time.Now()),
		Content:       in.Content,
		AudioDuration: in.DurationSeconds,
		CreatedAt:     time.Now(),
	}
	f.created = append(f.created, in)
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTranscripts) List(_ context.Context, userID, q string) ([]*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Transcript
	for _, t := range f.items {
		if t.UserID == userID && (q == "" || common.ContainsFold(t.Content, q) || common.ContainsFold(t.Title, q)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTranscripts) Get(_ context.Context, userID, id string) (*models.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTranscripts) Patch(ctx context.Context, userID, id string, p models.TranscriptPatch) (*models.Transcript, error) {
	t, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.TranslatedContent != nil {
		t.TranslatedContent = p.TranslatedContent
	}
	return t, nil
}

func (f *fakeTranscripts) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.items {
		if t.ID == id && t.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTranscripts) AudioURL(ctx context.Context, userID, id string) (string, error) {
	t, err := f.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if t.AudioKey == nil {
		return "", services.ErrNoAudio
	}
	return "https://s3.local/" + *t.AudioKey, nil
}

type fakeASR struct {
	text  string
	err   error
	calls int
	key   string
	audio []byte
}

func (f *fakeASR) Transcribe(_ context.Context, apiKey string, audio []byte) (string, error) {
	f.calls++
	f.key = apiKey
	f.audio = audio
	return f.text, f.err
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text, target string) string {
	if text == "" {
		return ""
	}
	return "[" + target + "] " + text
}

type harness struct {
	srv         *Server
	handler     http.Handler
	users       *fakeUsers
	transcripts *fakeTranscripts
	asr         *fakeASR
	env         map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	h := &harness{
		users:       &fakeUsers{tokens: map[string]string{"good": "u1", "other": "u2"}},
		transcripts: &fakeTranscripts{},
		asr:         &fakeASR{text: "hello world"},
		env:         map[string]string{"HUGGINGFACE_API_KEY": "hf-key"},
	}
	h.srv = NewServer(Deps{
		Users:          h.users,
		Transcripts:    h.transcripts,
		ASR:            h.asr,
		Translator:     fakeTranslator{},
		Metrics:        m,
		Logger:         logging.Nop(),
		ASRKeyEnv:      "HUGGINGFACE_API_KEY",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
	h.srv.getenv = func(k string) string { return h.env[k] }
	h.handler = h.srv.Handler()
	return h
}

func (h *harness) do(t *testing.T, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}
