// Package server provides the embedded per-graph HTTP server that a panel's
// graph client talks to over a local port.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sonnes/graphview/core"
)

// ErrDisposed is returned by Start after Dispose.
var ErrDisposed = errors.New("server disposed")

// Options configures a Server.
type Options struct {
	// Host is the interface to bind. Defaults to 127.0.0.1.
	Host string
	// AllowedOrigins lists origins allowed to call the server from a panel.
	// Defaults to any origin.
	AllowedOrigins []string
	Logger         *log.Logger
}

// Server serves one graph configuration on an ephemeral local port.
type Server struct {
	cfg    core.GraphConfig
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	port     int
	disposed bool

	disposeOnce sync.Once
}

// New creates a Server for cfg. Call Start to bind it.
func New(cfg core.GraphConfig, opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("graph", cfg.Identity().String()),
	}
}

// Port returns the assigned port, or 0 before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Start binds an ephemeral port on the configured host and begins serving.
// It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	if s.listener != nil {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.opts.Host, "0"))
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Host, err)
	}

	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.http = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("graph server stopped", "error", err)
		}
	}(s.http, ln)

	s.logger.Debug("graph server started", "port", s.port)
	return nil
}

// Dispose stops the server. Safe to call more than once and before Start.
func (s *Server) Dispose() {
	s.disposeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.disposed = true
		if s.http == nil {
			return
		}
		if err := s.http.Close(); err != nil {
			s.logger.Warn("close graph server", "error", err)
		}
		s.logger.Debug("graph server disposed", "port", s.port)
	})
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/config", s.handleConfig)
	return r
}

// configResponse is what the graph client learns about its session. The key
// is never exposed.
type configResponse struct {
	Identity        core.Identity `json:"identity"`
	GremlinEndpoint string        `json:"gremlin_endpoint,omitempty"`
	Title           string        `json:"title"`
	Port            int           `json:"port"`
}

func (s *Server) handleConfig(w http.ResponseWriter, req *http.Request) {
	resp := configResponse{
		Identity:        s.cfg.Identity(),
		GremlinEndpoint: s.cfg.GremlinEndpoint,
		Title:           s.cfg.Title(),
		Port:            s.Port(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode config", "error", err)
	}
}
