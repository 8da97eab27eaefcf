// Package httpapi exposes the TalkScribe JSON API: account endpoints, the
// transcription relay, transcript history, translation, health and metrics.
package httpapi

import (
	"context"
	"net/http"
	"os"

	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/dmitrijs2005/talkscribe/internal/observe"
	"github.com/dmitrijs2005/talkscribe/internal/server/models"
	"github.com/dmitrijs2005/talkscribe/internal/server/services"
)

// maxUploadBytes caps the multipart body accepted by the relay.
var maxUploadBytes int64 = 32 << 20

// Users is the account surface the handlers need.
type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UserIDFromAccessToken(token string) (string, error)
}

// Transcripts is the history surface the handlers need.
type Transcripts interface {
	Create(ctx context.Context, userID string, in services.NewTranscript) (*models.Transcript, error)
	List(ctx context.Context, userID, q string) ([]*models.Transcript, error)
	Get(ctx context.Context, userID, id string) (*models.Transcript, error)
	Patch(ctx context.Context, userID, id string, patch models.TranscriptPatch) (*models.Transcript, error)
	Delete(ctx context.Context, userID, id string) error
	AudioURL(ctx context.Context, userID, id string) (string, error)
}

// Transcriber is the hosted speech-to-text model.
type Transcriber interface {
	Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error)
}

// Translator never fails; degraded results are placeholder strings.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// Deps are the collaborators of a Server.
type Deps struct {
	Users       Users
	Transcripts Transcripts
	ASR         Transcriber
	Translator  Translator
	Metrics     *observe.Metrics
	Logger      logging.Logger
	// ASRKeyEnv names the environment variable read on each relay call.
	ASRKeyEnv string
	// MetricsHandler serves GET /metrics. Nil omits the route.
	MetricsHandler http.Handler
}

type Server struct {
	users          Users
	transcripts    Transcripts
	asr            Transcriber
	translator     Translator
	metrics        *observe.Metrics
	logger         logging.Logger
	asrKeyEnv      string
	metricsHandler http.Handler
	getenv         func(string) string
}

func NewServer(d Deps) *Server {
	return &Server{
		users:          d.Users,
		transcripts:    d.Transcripts,
		asr:            d.ASR,
		translator:     d.Translator,
		metrics:        d.Metrics,
		logger:         d.Logger.With("module", "http"),
		asrKeyEnv:      d.ASRKeyEnv,
		metricsHandler: d.MetricsHandler,
		getenv:         os.Getenv,
	}
}

// Register adds every route to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/me", s.requireAuth(http.HandlerFunc(s.handleMe)))

	mux.Handle("POST /api/transcribe", s.requireAuth(http.HandlerFunc(s.handleTranscribe)))

	mux.Handle("GET /api/transcripts", s.requireAuth(http.HandlerFunc(s.handleListTranscripts)))
	mux.Handle("GET /api/transcripts/{id}", s.requireAuth(http.HandlerFunc(s.handleGetTranscript)))
	mux.Handle("PATCH /api/transcripts/{id}", s.requireAuth(http.HandlerFunc(s.handlePatchTranscript)))
	mux.Handle("DELETE /api/transcripts/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteTranscript)))
	mux.Handle("GET /api/transcripts/{id}/audio", s.requireAuth(http.HandlerFunc(s.handleTranscriptAudio)))

	mux.Handle("POST /api/translate", s.requireAuth(http.HandlerFunc(s.handleTranslate)))
}

// Handler returns the routed API wrapped in the metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return observe.Middleware(s.metrics, s.logger, func(r *http.Request) string { return r.Pattern })(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
