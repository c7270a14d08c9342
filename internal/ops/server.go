// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ops serves the bot's operational endpoints: liveness, readiness,
// a status snapshot and Prometheus metrics.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/version"
)

// Config wires the server to the process it reports on.
type Config struct {
	Addr string

	// RequestLimit requests per Window are allowed per client IP.
	RequestLimit int
	Window       time.Duration

	ShutdownTimeout time.Duration

	// Ready backs /readyz. Nil means always ready.
	Ready func() bool
	// Status backs /status and must return a JSON-encodable value.
	Status func() any
}

// Server is the ops HTTP server.
type Server struct {
	cfg    Config
	logger zerolog.Logger
	router chi.Router

	mu   sync.Mutex
	addr net.Addr
}

// New builds the router. Nothing listens until Run.
func New(cfg Config) *Server {
	if cfg.RequestLimit <= 0 {
		cfg.RequestLimit = 120
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{cfg: cfg, logger: log.WithComponent("ops")}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(rateLimit(s.cfg.RequestLimit, s.cfg.Window))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// rateLimit answers over-limit clients with a JSON 429 and Retry-After.
func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
		}),
	)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the bound address once Run is listening, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens on cfg.Addr and serves until ctx ends, then shuts down
// gracefully. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("ops listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", ln.Addr().String()).Msg("ops server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ops server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("ops server shutdown error")
		return fmt.Errorf("ops shutdown: %w", err)
	}
	s.logger.Info().Msg("ops server stopped")
	return nil
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Version: version.Version, Timestamp: time.Now().UTC()})
}

type readyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.cfg.Ready == nil || s.cfg.Ready()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, readyResponse{Ready: ready, Timestamp: time.Now().UTC()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Status == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "status not configured"})
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L().Debug().Err(err).Msg("ops: write response")
	}
}
