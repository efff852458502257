// Package server provides the HTTP surface for handviz: health, the live hand
// state, an MJPEG preview and session history.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handviz/internal/server/api"
	"github.com/ayusman/handviz/internal/store"
)

// Pipeline is the running visualization as seen by the server.
type Pipeline interface {
	api.Toggle
	Stats() store.SessionStats
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Canvas    *Canvas
	Pipeline  Pipeline
}

// Server represents the HTTP server for handviz.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
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

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Canvas != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/state/ws", NewStateHandler(s.config.Canvas))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Canvas))
	}

	if s.config.Pipeline != nil {
		s.mux.Handle("/api/visualization", api.NewVisualizationHandler(s.config.Pipeline))
	}

	// Serve static files if StaticDir is configured
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

type stateResponse struct {
	Snapshot
	Rendered bool                `json:"rendered"`
	Enabled  *bool               `json:"enabled,omitempty"`
	Stats    *store.SessionStats `json:"stats,omitempty"`
}

// handleState handles GET requests to /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, rendered := s.config.Canvas.Snapshot()
	response := stateResponse{Snapshot: snap, Rendered: rendered}
	if p := s.config.Pipeline; p != nil {
		enabled := p.Enabled()
		stats := p.Stats()
		response.Enabled = &enabled
		response.Stats = &stats
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
