// Package server provides the HTTP server for the mudra cursor service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/siteconfig"
	"github.com/ayusman/mudra/internal/store"
)

const (
	// DefaultActionLimit and DefaultActionBurst bound cursor control requests.
	DefaultActionLimit rate.Limit = 10
	DefaultActionBurst            = 5

	shutdownTimeout = 5 * time.Second
)

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Cursor    api.Cursor
	Site      *siteconfig.Source
	Overlay   *OverlayHub
	Metrics   http.Handler

	ActionLimit rate.Limit
	ActionBurst int
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.ActionLimit == 0 {
		config.ActionLimit = DefaultActionLimit
	}
	if config.ActionBurst == 0 {
		config.ActionBurst = DefaultActionBurst
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Cursor != nil {
		h := api.NewCursorHandler(s.config.Cursor, s.config.ActionLimit, s.config.ActionBurst)
		s.mux.Handle("/api/cursor", h)
		s.mux.Handle("/api/cursor/", h)
	}

	if s.config.Site != nil {
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.Site))
	}

	if s.config.Store != nil {
		h := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", h)
		s.mux.Handle("/api/sessions/", h)
	}

	if s.config.Overlay != nil {
		s.mux.Handle("/api/overlay", s.config.Overlay)
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Cursor != nil {
		response["cursor"] = s.config.Cursor.CursorStatus().Mode
	}
	if s.config.Overlay != nil {
		response["overlays"] = s.config.Overlay.Clients()
	}

	writeJSON(w, response)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.config.Overlay != nil {
		s.config.Overlay.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
