// Package server provides the HTTP server for the asana pose trainer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/asana/internal/app"
	"github.com/ayusman/asana/internal/plugin"
	"github.com/ayusman/asana/internal/server/api"
	"github.com/ayusman/asana/internal/store"
)

// Config holds the server configuration. Routes are only registered for the
// parts that are set.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Hub       *EventHub
	Plugins   *plugin.Manager
	Logger    *slog.Logger
}

// Server represents the HTTP server for the asana application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
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
	s.mux.Handle("/metrics", promhttp.Handler())

	if a := s.config.App; a != nil {
		training := api.NewTrainingHandler(a)
		scoring := api.NewScoringHandler(a)

		s.mux.Handle("/api/training", training)
		s.mux.Handle("/api/training/", training)
		s.mux.HandleFunc("/api/training/frame", scoring.Frame)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(a))
		s.mux.HandleFunc("/api/compare", scoring.Compare)
		s.mux.HandleFunc("/api/recognize", scoring.Recognize)
		s.mux.Handle("/api/stream", NewStreamHandler(a))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	if st := s.config.Store; st != nil {
		var cache api.PoseCache
		if s.config.App != nil {
			cache = s.config.App
		}
		var lookup plugin.Lookup
		if s.config.Plugins != nil {
			lookup = s.config.Plugins
		}

		poses := api.NewPoseHandler(st, cache)
		cues := api.NewCueHandler(st, lookup)
		stats := api.NewStatsHandler(st)

		s.mux.Handle("/api/poses", poses)
		s.mux.Handle("/api/poses/", poses)
		s.mux.Handle("/api/cues", cues)
		s.mux.Handle("/api/cues/", cues)
		s.mux.HandleFunc("/api/sessions", stats.Sessions)
		s.mux.HandleFunc("/api/sessions/", stats.Sessions)
		s.mux.HandleFunc("/api/performance", stats.Performance)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.PluginsHandler(s.config.Plugins))
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
	if s.config.App != nil {
		response["training"] = s.config.App.IsTraining()
		response["capture"] = s.config.App.IsRunning()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("http server listening", "addr", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
