// Package server exposes the local catalog, archive and leaderboard over
// HTTP, so another device on the LAN can pull puzzles and standings.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/quartetgames/quartet/internal/catalog"
	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/progress"
)

const (
	logDate = `2006-01-02T15:04:05.000-07:00`
	timeout = 10 * time.Second
)

// Config carries the serve command's settings.
type Config struct {
	Bind    string
	Port    int
	Verbose bool
	// Handle names the local player on the leaderboard.
	Handle string
}

// Server wires the stores behind the HTTP surface.
type Server struct {
	cfg      Config
	catalog  *catalog.Store
	progress progress.Store
}

// New builds a server over the given stores.
func New(cfg Config, cat *catalog.Store, prog progress.Store) *Server {
	return &Server{cfg: cfg, catalog: cat, progress: prog}
}

func (s *Server) logf(format string, args ...any) {
	if !s.cfg.Verbose {
		return
	}
	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
}

// Router builds the route table; split out so tests can drive the
// handlers without a listener.
func (s *Server) Router() *httprouter.Router {
	mux := httprouter.New()
	mux.GET("/v1/puzzles/:kind", s.servePuzzle())
	mux.GET("/v1/archive/:kind", s.serveArchive())
	mux.GET("/v1/leaderboard/:kind", s.serveLeaderboard())
	mux.GET("/healthz", s.serveHealthCheck())
	return mux
}

// Serve runs until the context is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port)),
		Handler:           s.Router(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logf("SERVE: Listening on http://%s/", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) serveHealthCheck() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		w.Write([]byte("Ok\n"))
	}
}

// parseKind resolves the :kind segment, writing the error response on
// failure.
func parseKind(w http.ResponseWriter, p httprouter.Params) (game.Kind, bool) {
	kind, err := game.ParseKind(p.ByName("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return "", false
	}
	return kind, true
}
