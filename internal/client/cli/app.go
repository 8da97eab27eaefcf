package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/audio"
	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/client/config"
	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/client/services"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/recorder"
	"github.com/dmitrijs2005/talkscribe/internal/translate"

	_ "modernc.org/sqlite"
)

// Mode is the connectivity state shown in the prompt.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// recorderIface is the part of *recorder.Orchestrator the commands use.
type recorderIface interface {
	Start(ctx context.Context, mode recorder.Mode) error
	Stop(ctx context.Context) (recorder.Result, error)
	SwitchMode(ctx context.Context, mode recorder.Mode) error
	Snapshot(ctx context.Context) (recorder.Snapshot, error)
	Translate(ctx context.Context, target string) (string, error)
}

type App struct {
	config      *config.Config
	log         logging.Logger
	db          *sql.DB
	authService services.AuthService
	transcripts *services.TranscriptService
	history     *services.HistoryService
	api         client.Client
	orch        *recorder.Orchestrator
	recorder    recorderIface
	mic         audio.Microphone

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	user *models.User
	mode recorder.Mode
	Mode Mode
}

// NewApp opens the local store and wires the services, the server client,
// the recognizer and the microphone into a recording orchestrator.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {

	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	as := services.NewAuthService(db, c.AuthPolicy)
	ts := services.NewTranscriptService(db, log)

	api := client.NewHTTPClient(c.ServerURL, &http.Client{})
	api.OnTokens = func(t client.Tokens) {
		if err := as.SaveTokens(context.Background(), t); err != nil {
			log.Warn(context.Background(), "failed to persist server tokens", "error", err)
		}
	}

	tr := &relayTranslator{
		api:   api,
		local: translate.NewTranslator(translate.Config{Timeout: c.TranslationTimeout}, log),
		log:   log.With("module", "translate-relay"),
	}

	mic, err := openMicrophone(c)
	if err != nil {
		devices, _ := audio.ListDevices()
		log.Warn(ctx, "no microphone available", "error", err, "devices", devices)
	}

	rec := recorder.Select(recorder.NativeConfig{
		APIKey:   os.Getenv(c.RecognizerKeyEnv),
		Language: c.RecognizerLanguage,
	}, log)

	app := &App{
		config:      c,
		log:         log,
		db:          db,
		authService: as,
		transcripts: ts,
		history:     services.NewHistoryService(as, ts, tr),
		api:         api,
		mic:         mic,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		Mode:        ModeOffline,
	}
	if !rec.Supported() {
		app.mode = recorder.ModeTraditional
	}

	app.orch = recorder.New(recorder.Config{
		Microphone: mic,
		Recognizer: rec,
		Saver:      &services.SessionSaver{Auth: as, Transcripts: ts},
		Translator: tr,
		Logger:     log,
		OnAlert:    app.alert,
	})
	app.recorder = app.orch

	return app, nil
}

func openMicrophone(c *config.Config) (audio.Microphone, error) {
	if c.WAVInput != "" {
		m, err := audio.NewFileMicrophone(c.WAVInput, true)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return audio.NewDeviceMicrophone(c.MicrophoneDevice)
}

func (a *App) alert(err error) {
	fmt.Fprintln(a.out, "!", err)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) setUser(u *models.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.user != nil {
		s = a.user.Email + " " + a.mode.String() + " "
	}
	s += string(a.Mode)
	return fmt.Sprintf("(%s)", s)
}

// restoreSession picks up the session snapshot left by a previous run.
func (a *App) restoreSession(ctx context.Context) {
	u, ok := a.authService.CurrentSession(ctx)
	if !ok {
		return
	}
	a.setUser(u)
	a.api.SetTokens(a.authService.LoadTokens(ctx))
	fmt.Fprintf(a.out, "Welcome back, %s.\n", displayName(u))
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Run drives the session until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = a.orch.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	fmt.Fprintln(a.out, "Welcome to TalkScribe (type 'help' for commands)")
	a.restoreSession(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()

	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "db close failed", "error", err)
	}
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// between online and offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.api.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
