// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jeranaias/aria-tui/internal/config"
	"github.com/jeranaias/aria-tui/internal/upstream"
)

// Server constants.
const (
	// MaxQueryLength caps the q parameter, in bytes.
	MaxQueryLength = 100000

	// DefaultRequestTimeout bounds a single /chat request.
	DefaultRequestTimeout = 60 * time.Second

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ErrorReplyPrefix starts the 200 reply sent when the upstream body
	// could not be parsed.
	ErrorReplyPrefix = "ERROR: "

	// MissingQueryText is the 400 body when q is absent.
	MissingQueryText = "Required request parameter 'q' is not present"
)

// Completer turns a prompt into a reply. *upstream.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configures the HTTP surface.
type Options struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
}

// OptionsFromConfig maps the [server] config section onto Options.
func OptionsFromConfig(cfg config.ServerConfig) Options {
	return Options{
		Addr:           cfg.Addr,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats counts requests served since start.
type Stats struct {
	StartTime time.Time
	requests  atomic.Int64
	failures  atomic.Int64
}

// Requests returns the number of /chat requests handled.
func (s *Stats) Requests() int64 { return s.requests.Load() }

// Failures returns the number of /chat requests that ended in an error.
func (s *Stats) Failures() int64 { return s.failures.Load() }

// Uptime returns the time since the server was created.
func (s *Stats) Uptime() time.Duration { return time.Since(s.StartTime) }

// ============================================================================
// SERVER
// ============================================================================

// Server is the chat backend.
type Server struct {
	opts      Options
	completer Completer
	logger    *zap.Logger
	limiter   *RateLimiter
	stats     *Stats
	router    chi.Router
}

// New creates a server. A nil logger discards logs.
func New(opts Options, completer Completer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Addr == "" {
		opts.Addr = config.DefaultServerAddr
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		opts:      opts,
		completer: completer,
		logger:    logger.Named("server"),
		limiter:   NewRateLimiter(opts.RateLimit, opts.RateBurst),
		stats:     &Stats{StartTime: time.Now()},
	}
	s.setupRoutes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// Stats returns the live request counters.
func (s *Server) Stats() *Stats { return s.stats }

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(SecurityHeadersMiddleware)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.With(RateLimitMiddleware(s.limiter, s.logger)).Get("/chat", s.handleChat)

	s.router = r
}

// ============================================================================
// CHAT HANDLER
// ============================================================================

// handleChat handles GET /chat?q=.
//
// The reply is the upstream completion as text/plain. An upstream body that
// does not parse yields 200 with an "ERROR: " reply; any other failure is a
// 500 whose body is the error text, which the client shows as-is.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if !values.Has("q") {
		writeText(w, http.StatusBadRequest, MissingQueryText)
		return
	}
	query := values.Get("q")
	if len(query) > MaxQueryLength {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Query exceeds maximum length of %d", MaxQueryLength))
		return
	}

	s.stats.requests.Add(1)
	reply, err := s.completer.Complete(r.Context(), query)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, reply)
	case errors.Is(err, upstream.ErrMalformedResponse):
		s.stats.failures.Add(1)
		s.logger.Warn("upstream reply unparseable", zap.Error(err))
		writeText(w, http.StatusOK, ErrorReplyPrefix+err.Error())
	default:
		s.stats.failures.Add(1)
		s.logger.Error("completion failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Model         string `json:"model,omitempty"`
	Upstream      string `json:"upstream"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Requests      int64  `json:"requests"`
	Failures      int64  `json:"failures"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:        "ok",
		Upstream:      "configured",
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
		Requests:      s.stats.Requests(),
		Failures:      s.stats.Failures(),
	}
	if m, ok := s.completer.(interface{ Model() string }); ok {
		health.Model = m.Model()
	}
	if c, ok := s.completer.(interface{ IsConfigured() bool }); ok && !c.IsConfigured() {
		health.Upstream = "not_configured"
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
