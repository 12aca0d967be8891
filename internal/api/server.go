// Package api exposes the recipe service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"pantry-chef/internal/app"
	"pantry-chef/internal/config"
	"pantry-chef/internal/logging"
)

// maxUploadBytes bounds analyze-image uploads.
const maxUploadBytes = 5 << 20

type Server struct {
	app         *app.App
	config      config.ServerConfig
	storePath   string
	rateLimiter *rate.Limiter
	webhookPath string
	webhook     http.Handler
	router      chi.Router
	httpServer  *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithTelegramWebhook mounts h at path, outside the /api rate limit.
func WithTelegramWebhook(path string, h http.Handler) Option {
	return func(s *Server) {
		s.webhookPath = path
		s.webhook = h
	}
}

// NewServer builds the router for a. The server configuration is taken from
// a's config.
func NewServer(a *app.App, opts ...Option) *Server {
	cfg := a.Config()
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		app:         a,
		config:      cfg.Server,
		storePath:   cfg.Store.Path,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	logging.Info().
		Str("addr", s.httpServer.Addr).
		Float64("rate_limit", s.config.RateLimit).
		Int("rate_burst", s.config.RateBurst).
		Msg("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Server.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}
