// Package server exposes the browser over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/Ning0612/nasbrowser/internal/logger"
	"github.com/Ning0612/nasbrowser/internal/service"
)

const (
	// DefaultMaxUploadBytes caps an upload request body when no limit is configured
	DefaultMaxUploadBytes = 1 << 30

	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk
	multipartMemory = 32 << 20

	shutdownTimeout = 5 * time.Second
)

// Options configures the HTTP server
type Options struct {
	MaxUploadBytes int64
}

// Server routes HTTP requests to a service.Browser
type Server struct {
	browser        *service.Browser
	maxUploadBytes int64
	router         *mux.Router
}

// New creates a server for browser
func New(browser *service.Browser, opts Options) (*Server, error) {
	if browser == nil {
		return nil, fmt.Errorf("browser cannot be nil")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		browser:        browser,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	// paths reach the resolver untouched; ".." is its business, not the router's
	r.SkipClean(true)

	r.Use(recoverMiddleware, requestIDMiddleware, accessLogMiddleware)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/browse", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/browse/{subpath:.*}", s.handleBrowse).Methods(http.MethodGet)
	r.HandleFunc("/download/{path:.*}", s.handleDownload).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/upload/{subpath:.*}", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/create-folder/{subpath:.*}", s.handleCreateFolder).Methods(http.MethodPost)
	r.HandleFunc("/delete/{path:.*}", s.handleDelete).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such route"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}

// Run serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Get().Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Get().Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
