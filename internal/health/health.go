// Package health exposes a small HTTP endpoint with liveness and bot
// status, for supervisors and dashboards.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nomadcxx/cinepost/internal/logging"
)

// Snapshot is a point-in-time view of the bot, reported by /api/status.
type Snapshot struct {
	Uptime          string `json:"uptime"`
	ActiveSessions  int    `json:"active_sessions"`
	FilesReceived   int64  `json:"files_received"`
	SearchesRun     int64  `json:"searches_run"`
	PostsPublished  int64  `json:"posts_published"`
	SessionsExpired int64  `json:"sessions_expired"`
	CachedPosters   int    `json:"cached_posters"`
}

// StatusSource provides the live snapshot. The bot implements this.
type StatusSource interface {
	StatusSnapshot() Snapshot
}

// Server is the status HTTP server.
type Server struct {
	addr   string
	source StatusSource
	log    *logging.Logger
	http   *http.Server
}

// NewServer creates a status server listening on addr.
func NewServer(addr string, source StatusSource, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		addr:   addr,
		source: source,
		log:    log,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.source.StatusSnapshot())
	})

	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("health", "status server listening", logging.F("addr", s.addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("health", "status server failed", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
