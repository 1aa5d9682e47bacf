package server

import (
	"context"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"file-portal/internal/auth"
	"file-portal/internal/files"
)

// BuildInfo is reported by /health and /metrics.
type BuildInfo struct {
	Version string
	Commit  string
}

// Pinger is a dependency whose reachability decides readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr  string // e.g. ":8080"
	Build BuildInfo

	Auth  *auth.Authenticator
	Files files.Repository

	// Checks are pinged by /health and /ready, keyed by component name.
	Checks map[string]Pinger

	Logger       *slog.Logger
	AboutName    string
	CookieSecure bool

	// FormRateLimit caps login and upload submissions per client IP per
	// minute. Zero disables the limit.
	FormRateLimit int

	// TrustProxy takes the client address from X-Forwarded-For or
	// X-Real-IP. Without it only the peer address counts.
	TrustProxy bool
}

type Server struct {
	cfg        Config
	log        *slog.Logger
	pages      map[string]*template.Template
	metrics    *Metrics
	started    time.Time
	httpServer *http.Server
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		log:     cfg.Logger,
		pages:   mustParsePages(),
		metrics: NewMetrics(),
		started: time.Now(),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// [realIP] -> requestID -> logging -> recoverer -> headers -> session state -> routes
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(headersMiddleware)
	r.Use(s.stateMiddleware)

	r.NotFound(s.handleUnmatched)

	forms := s.rateLimit(newRateLimiter(s.cfg.FormRateLimit, time.Minute))

	r.Get("/", s.handleHome)
	r.Get("/about", http.RedirectHandler("/about/", http.StatusPermanentRedirect).ServeHTTP)
	r.Get("/about/", s.handleAbout)

	r.Get("/login", s.handleLogin)
	r.With(forms).Post("/login", s.handleLogin)
	r.Get("/{file_name}.txt", s.handleTextFile)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/upload", s.handleUpload)
		r.With(forms).Post("/upload", s.handleUpload)
		r.Get("/files", s.handleFiles)
		r.Get("/uploads/*", s.handleFetch)
		r.Get("/logout", s.handleLogout)
		r.Post("/logout", s.handleLogout)
	})

	return r
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
