// Package server provides the local HTTP server: status and control API,
// the session journal, a live body feed and an overlay preview stream.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/overlay"
	"github.com/ayusman/kathak/internal/server/api"
	"github.com/ayusman/kathak/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir   string
	Store       *store.Store
	Controller  api.Controller
	Broadcaster *app.Broadcaster
	Overlay     *overlay.Renderer
	Logger      *slog.Logger
}

// Server represents the HTTP server for the kathak application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Controller != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Controller))
		s.mux.Handle("/api/commands", api.NewCommandHandler(s.config.Controller))
	}

	if s.config.Store != nil {
		settings := api.NewSettingsHandler(s.config.Store, s.config.Controller)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)

		sessions := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Broadcaster != nil {
		s.mux.Handle("/api/bodies", NewBodiesHandler(s.config.Broadcaster, s.logger))

		if s.config.Overlay != nil {
			s.mux.Handle("/api/stream", NewStreamHandler(s.config.Broadcaster, s.config.Overlay, s.logger))
		}
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

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server bound to addr, for callers that need
// graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
