// Package httpserver wires the docs server routes, middleware and listener.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/handlers"
	smw "git.home.luguber.info/inful/docsite/internal/server/middleware"
)

// Server owns the HTTP listener for the docs API.
type Server struct {
	cfg          *config.Config
	deps         Dependencies
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter

	monitoringHandlers *handlers.MonitoringHandlers
	contentHandlers    *handlers.ContentHandlers
	searchHandlers     *handlers.SearchHandlers

	mchain func(http.Handler) http.Handler

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New constructs a server. cfg must have defaults applied.
func New(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	s := &Server{
		cfg:          cfg,
		deps:         deps,
		logger:       logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}

	s.monitoringHandlers = handlers.NewMonitoringHandlers(logger)
	s.contentHandlers = handlers.NewContentHandlers(deps.Provider, deps.Manifest, deps.SearchIndex, handlers.ContentOptions{
		BaseDir: cfg.Content.DocsDir,
		Resolve: docs.ResolveOptions{
			Concurrency: cfg.Content.ResolveConcurrency,
			Timeout:     cfg.Content.ResolveTimeoutDuration(),
		},
		Recorder: recorder,
		Logger:   logger,
	})
	if deps.Searcher != nil {
		s.searchHandlers = handlers.NewSearchHandlers(deps.Searcher, recorder, logger)
	}

	s.mchain = smw.Chain(logger, s.errorAdapter, recorder)
	return s
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	return s.mchain(s.routes())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /api/version", s.monitoringHandlers.HandleVersion)
	mux.HandleFunc("GET /api/manifest", s.contentHandlers.HandleManifest)
	mux.HandleFunc("GET /api/search-index", s.contentHandlers.HandleSearchIndex)
	mux.HandleFunc("GET /api/raw/{$}", s.contentHandlers.HandleRaw)
	mux.HandleFunc("GET /api/raw/{"+handlers.SlugPathValue+"...}", s.contentHandlers.HandleRaw)
	if s.searchHandlers != nil {
		mux.HandleFunc("GET /api/search", s.searchHandlers.HandleSearch)
	}
	if s.cfg.Metrics.Enabled && s.deps.MetricsHandler != nil {
		mux.Handle("GET "+s.cfg.Metrics.Path, s.deps.MetricsHandler)
	}
	return mux
}

// Start binds the configured address and serves in the background. Binding
// happens before Start returns so address conflicts surface immediately.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("http server already started")
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("http startup failed: listen %s: %w", s.cfg.Server.Address, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: s.cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  s.cfg.Server.IdleTimeoutDuration(),
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.srv = srv
	s.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()

	s.logger.Info("HTTP server started", slog.String("address", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
