// Package server wires the TalkScribe server together: storage, services,
// the HTTP API and the gRPC health endpoint, and runs them until a signal
// arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/asr"
	"github.com/dmitrijs2005/talkscribe/internal/events"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/observe"
	"github.com/dmitrijs2005/talkscribe/internal/server/config"
	"github.com/dmitrijs2005/talkscribe/internal/server/httpapi"
	"github.com/dmitrijs2005/talkscribe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
	"github.com/dmitrijs2005/talkscribe/internal/translate"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/talkscribe/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	publisher       events.Publisher
	shutdownMetrics func(context.Context) error
	api             *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	mp, shutdownMetrics, err := observe.InitProvider()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if c.NATSURL != "" {
		p, err := events.ConnectNATS(c.NATSURL, logger)
		if err != nil {
			logger.Warn(ctx, "transcript events disabled", "error", err)
		} else {
			publisher = p
		}
	}

	audio, err := services.NewS3AudioStore(ctx, c)
	if err != nil {
		logger.Warn(ctx, "audio archive disabled", "error", err)
	}
	var audioStore services.AudioStore
	if audio != nil {
		audioStore = audio
	}

	translator := translate.NewTranslator(translate.Config{}, logger)
	translator.OnResult = func(ctx context.Context, provider, status string) {
		metrics.TranslationRequests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		))
	}

	api := httpapi.NewServer(httpapi.Deps{
		Users:          services.NewUserService(db, rm, c),
		Transcripts:    services.NewTranscriptService(db, rm, audioStore, publisher, logger),
		ASR:            asr.NewClient(&http.Client{Timeout: 2 * time.Minute}, c.ASRModelURL),
		Translator:     translator,
		Metrics:        metrics,
		Logger:         logger,
		ASRKeyEnv:      c.ASRKeyEnv,
		MetricsHandler: observe.Handler(),
	})

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		publisher:       publisher,
		shutdownMetrics: shutdownMetrics,
		api:             api,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context) error {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails; then it releases every resource.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.startHTTPServer(gctx) })
	g.Go(func() error { return app.startGRPCServer(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	app.close()
	return err
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.publisher.Close(); err != nil {
		app.logger.Warn(ctx, "events close failed", "error", err)
	}
	if err := app.shutdownMetrics(ctx); err != nil {
		app.logger.Warn(ctx, "metrics shutdown failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
