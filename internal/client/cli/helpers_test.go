package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/client/config"
	"github.com/dmitrijs2005/talkscribe/internal/client/services"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/recorder"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	startErr error
	stopRes  recorder.Result
	stopErr  error
	snap     recorder.Snapshot
	trOut    string
	trErr    error

	started  []recorder.Mode
	switched []recorder.Mode
	stopped  int
	targets  []string
}

func (f *fakeRecorder) Start(_ context.Context, mode recorder.Mode) error {
	f.started = append(f.started, mode)
	if f.startErr == nil {
		f.snap.Recording = true
	}
	return f.startErr
}

func (f *fakeRecorder) Stop(context.Context) (recorder.Result, error) {
	f.stopped++
	f.snap.Recording = false
	return f.stopRes, f.stopErr
}

func (f *fakeRecorder) SwitchMode(_ context.Context, mode recorder.Mode) error {
	f.switched = append(f.switched, mode)
	return nil
}

func (f *fakeRecorder) Snapshot(context.Context) (recorder.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeRecorder) Translate(_ context.Context, target string) (string, error) {
	f.targets = append(f.targets, target)
	return f.trOut, f.trErr
}

type fakeAPI struct {
	loginErr    error
	registerErr error
	transcribe  *client.TranscribeResult
	transErr    error
	translated  string
	translateEr error

	tokens      client.Tokens
	logins      int
	registers   int
	logouts     int
	uploads     [][]byte
	translateIn []string
}

func (f *fakeAPI) Ping(context.Context) error { return nil }

func (f *fakeAPI) Register(_ context.Context, email, _ string) (*client.RemoteUser, error) {
	f.registers++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.tokens = client.Tokens{AccessToken: "a", RefreshToken: "r"}
	return &client.RemoteUser{ID: "srv", Email: email}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*client.RemoteUser, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.tokens = client.Tokens{AccessToken: "a", RefreshToken: "r"}
	return &client.RemoteUser{ID: "srv", Email: email}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logouts++
	f.tokens = client.Tokens{}
	return nil
}

func (f *fakeAPI) Transcribe(_ context.Context, wav []byte, _ int) (*client.TranscribeResult, error) {
	f.uploads = append(f.uploads, wav)
	return f.transcribe, f.transErr
}

func (f *fakeAPI) Translate(_ context.Context, text, target string) (string, error) {
	f.translateIn = append(f.translateIn, target+"|"+text)
	return f.translated, f.translateEr
}

func (f *fakeAPI) Tokens() client.Tokens     { return f.tokens }
func (f *fakeAPI) SetTokens(t client.Tokens) { f.tokens = t }

type prefixTranslator struct{}

func (prefixTranslator) Translate(_ context.Context, text, target string) string {
	return "[" + target + "] " + text
}

type testApp struct {
	*App
	rec *fakeRecorder
	api *fakeAPI
	out *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	as := services.NewAuthService(db, cfg.AuthPolicy)
	ts := services.NewTranscriptService(db, logging.Nop())
	rec := &fakeRecorder{}
	api := &fakeAPI{}
	out := &bytes.Buffer{}

	app := &App{
		config:      cfg,
		log:         logging.Nop(),
		db:          db,
		authService: as,
		transcripts: ts,
		history:     services.NewHistoryService(as, ts, prefixTranslator{}),
		api:         api,
		recorder:    rec,
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         out,
		Mode:        ModeOffline,
	}
	return &testApp{App: app, rec: rec, api: api, out: out}
}

// stubCredentials makes the credential prompts return fixed values.
func stubCredentials(t *testing.T, email, password string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		return email, nil
	}
	getPassword = func(*bufio.Reader, io.Writer) (string, error) {
		return password, nil
	}
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPw
	})
}

// signIn registers and signs in a local user without touching the prompts.
func (ta *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	u, err := ta.authService.Register(context.Background(), email, "pw")
	require.NoError(t, err)
	ta.setUser(u)
}

func newAuthService(t *testing.T, ta *testApp, policy string) services.AuthService {
	t.Helper()
	return services.NewAuthService(ta.db, policy)
}
