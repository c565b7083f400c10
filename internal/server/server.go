// Package server exposes interactive graph sessions over HTTP.
//
// Each session owns one planar graph with a primary and a secondary root.
// Clients create a session (empty, generated, or loaded from graph
// storage), mutate it, and query depths, forests, diffs and renderings.
// Every query answers from forests rebuilt for the latest mutation.
//
// # Routes
//
//	GET    /healthz
//	POST   /sessions                      {"generate": {...}} or {"load": "name"}
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/vertices        {"x": 10, "y": 20}
//	POST   /sessions/{id}/edges           {"from": 0, "to": 1}
//	PUT    /sessions/{id}/roots           {"primary": 0, "secondary": 5}
//	POST   /sessions/{id}/reset
//	GET    /sessions/{id}/forest?root=r
//	GET    /sessions/{id}/depth/{v}
//	GET    /sessions/{id}/diff
//	GET    /sessions/{id}/view
//	GET    /sessions/{id}/pick?x=..&y=..
//	GET    /sessions/{id}/dot
//	GET    /sessions/{id}/render/{format}
//	POST   /sessions/{id}/save/{name}
//	GET    /graphs
//	GET    /graphs/{name}
//	DELETE /graphs/{name}
//	GET    /metrics                       when Options.Metrics is set
//
// Errors are returned as {"code": "...", "message": "..."} with a status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/session"
	"github.com/matzehuels/sptree/pkg/storage"
)

// Defaults for [Options] fields left zero.
const (
	DefaultCleanupInterval = 5 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	maxBodyBytes           = 1 << 20
)

// Options configures a [Server].
type Options struct {
	// Sessions holds live sessions. Nil uses a MemoryStore with DefaultTTL.
	Sessions session.Store
	// Graphs persists named graphs. Nil disables the save and /graphs routes.
	Graphs storage.Store
	// Runner generates graphs and renders views with caching. Nil uses an
	// uncached runner.
	Runner *pipeline.Runner
	// Logger receives request logs. Nil uses log.Default().
	Logger *log.Logger
	// CleanupInterval is how often expired sessions are removed.
	CleanupInterval time.Duration
	// Metrics, if set, is served on GET /metrics.
	Metrics http.Handler
}

// Server is the HTTP API.
type Server struct {
	sessions session.Store
	graphs   storage.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	cleanup  time.Duration
	metrics  http.Handler
	router   chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	s := &Server{
		sessions: opts.Sessions,
		graphs:   opts.Graphs,
		runner:   opts.Runner,
		logger:   opts.Logger,
		cleanup:  opts.CleanupInterval,
		metrics:  opts.Metrics,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/vertices", s.handleAddVertex)
			r.Post("/edges", s.handleAddEdge)
			r.Put("/roots", s.handleSetRoots)
			r.Post("/reset", s.handleReset)
			r.Get("/forest", s.handleForest)
			r.Get("/depth/{v}", s.handleDepth)
			r.Get("/diff", s.handleDiff)
			r.Get("/view", s.handleView)
			r.Get("/pick", s.handlePick)
			r.Get("/dot", s.handleDOT)
			r.Get("/render/{format}", s.handleRender)
			r.Post("/save/{name}", s.handleSave)
		})
	})

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.handleListGraphs)
		r.Get("/{name}", s.handleGetGraph)
		r.Delete("/{name}", s.handleDeleteGraph)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are cleaned up in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	cleanupCtx, stop := context.WithCancel(ctx)
	defer stop()
	go s.runCleanup(cleanupCtx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.Cleanup(ctx)
			if err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
