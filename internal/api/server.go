/*
Package api exposes recommendations, showcase sections, catalog search and
event tracking over HTTP.

Routes:

	GET  /healthz
	GET  /api/recommendations?user_id=
	GET  /api/showcase
	GET  /api/search?q=&user_id=&limit=
	POST /api/events
	GET  /metrics

Errors are returned as {"error": {"code": "...", "message": "..."}}.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/khanglvm/city-hub/internal/storage"
)

// Recommender composes personalised item lists.
type Recommender interface {
	Recommend(ctx context.Context, userID string) []storage.Item
}

// Showcaser composes merchandising sections.
type Showcaser interface {
	Compose(ctx context.Context) []recommend.Section
}

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, userID, text string, limit int) ([]storage.Item, error)
}

// EventTracker accepts user events without blocking.
type EventTracker interface {
	Track(event learning.Event)
}

// StatsReader reports storage row counts.
type StatsReader interface {
	Stats(ctx context.Context) (storage.Stats, error)
}

// Deps are the collaborators behind the routes. Nil collaborators make
// their routes answer 503.
type Deps struct {
	Recommender Recommender
	Showcase    Showcaser
	Search      Searcher
	Tracker     EventTracker
	Stats       StatsReader

	// MetricsEnabled mounts /metrics.
	MetricsEnabled bool

	// RequestTimeout bounds each handler. Zero means 10s.
	RequestTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	router chi.Router
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 10 * time.Second
	}
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.deps.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logging.Info().Msg("HTTP API shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
