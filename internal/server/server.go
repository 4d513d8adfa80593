package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own a group of routes.
type Handler interface {
	Register(r *mux.Router) // Register adds the handler's routes to r
}

// Server serves the directory API.
type Server struct {
	addr    string
	host    string
	router  *Router
	logger  *log.Logger
	metrics *Metrics
}

// New builds a [Server] for cfg over repos with logging, recovery and metrics middleware installed.
func New(cfg shared.ServerConfig, repos *repositories.Repositories, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	metrics := NewMetrics()
	router := NewRouter()
	router.Use(Recover(logger), Logging(logger), metrics.Middleware())

	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())
	router.Handler(NewAPIHandler(repos, logger))

	return &Server{
		addr:    cfg.Addr(),
		host:    cfg.Host,
		router:  router,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler returns the root handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Run listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if !isLoopback(s.host) {
		return fmt.Errorf("%w: server host %q is not a loopback address", shared.ErrInvalidConfig, s.host)
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", "http://"+s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
