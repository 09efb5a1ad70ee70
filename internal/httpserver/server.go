package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/auctionsync/internal/httpserver/routes"
	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// Server wraps the HTTP server.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter returns a chi router with the global middlewares shared by
// both binaries. service labels access logs and request metrics.
func NewRouter(loggerClient logger.Logger, service string, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)          // X-Request-ID on each request
	r.Use(middleware.Recoverer)          // never crash the process on panic
	r.Use(middleware.Timeout(timeout))   // per-request deadline
	r.Use(mw.Log(loggerClient, service)) // structured access logs + request counter

	return r
}

// NewDriver builds the headless page server: page render, UI events,
// health and metrics.
func NewDriver(addr string, timeout time.Duration, loggerClient logger.Logger, d deps.Deps) *Server {
	r := NewRouter(loggerClient, "driver", timeout)
	routes.RegisterAll(r, d)
	return New(addr, r, loggerClient)
}

// NewDevBackend builds the development backend server: probes and metrics
// from the registry, the site routes from mount.
func NewDevBackend(addr string, timeout time.Duration, loggerClient logger.Logger, d deps.Deps, mount func(chi.Router)) *Server {
	r := NewRouter(loggerClient, "devbackend", timeout)
	routes.RegisterAll(r, d, routes.GroupProbes, routes.GroupMetrics)
	mount(r)
	return New(addr, r, loggerClient)
}

// New wraps handler in an http.Server with conservative timeouts.
func New(addr string, handler http.Handler, loggerClient logger.Logger) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: loggerClient,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
