// Package server exposes RMD lookups and cache invalidation over HTTP.
//
// The service plays the part of the host CMS's profile test tool and cache
// invalidation hook: a page build asks for a profile, and an editor saving a
// person node posts its tags to /v1/cache/invalidate.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/psulibraries/rmdlink/pkg/rmd"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	maxRequestBody    = 1 << 20
)

// Fetcher is the part of rmd.Fetcher the handlers use.
type Fetcher interface {
	FetchProfile(ctx context.Context, username string, opts ...rmd.FetchOption) rmd.Record
	FetchAttribute(ctx context.Context, username, attribute string, opts ...rmd.FetchOption) (any, bool)
	FetchPublications(ctx context.Context, username string, opts ...rmd.FetchOption) rmd.Publications
	InvalidateUser(ctx context.Context, username string) (int, error)
	InvalidateAll(ctx context.Context) (int, error)
	InvalidateTags(ctx context.Context, tags ...string) (int, error)
}

// Options configures a [Server].
type Options struct {
	Logger  *log.Logger  // request and error log; defaults to log.Default()
	Metrics http.Handler // served at /metrics when set
}

// Server routes HTTP requests to a [Fetcher].
type Server struct {
	fetcher Fetcher
	logger  *log.Logger
	router  chi.Router
}

// New creates a server for fetcher.
func New(fetcher Fetcher, opts Options) *Server {
	s := &Server{
		fetcher: fetcher,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.routes(opts.Metrics)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/profiles/{username}", func(r chi.Router) {
			r.Get("/", s.profile)
			r.Get("/attributes/{attribute}", s.attribute)
			r.Get("/publications", s.publications)
		})
		r.Post("/cache/invalidate", s.invalidate)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeInvalidInput, "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
