package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/khanglvm/city-hub/internal/validation"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	maxEventBody       = 16 << 10
)

type itemsResponse struct {
	Items []storage.Item `json:"items"`
	Count int            `json:"count"`
}

type showcaseResponse struct {
	Sections []recommend.Section `json:"sections"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Time   time.Time      `json:"time"`
	Stats  *storage.Stats `json:"stats,omitempty"`
}

// TrackRequest is the body of POST /api/events.
type TrackRequest struct {
	UserID   string            `json:"user_id" validate:"required,max=128"`
	Type     string            `json:"type" validate:"required,max=32"`
	Category string            `json:"category,omitempty" validate:"max=128"`
	EntityID string            `json:"entity_id,omitempty" validate:"max=128"`
	Metadata map[string]string `json:"metadata,omitempty" validate:"max=16"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if s.deps.Stats != nil {
		stats, err := s.deps.Stats.Stats(r.Context())
		if err != nil {
			resp.Status = "degraded"
		} else {
			resp.Stats = &stats
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recommender == nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Recommendations are not configured", nil)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	items := s.deps.Recommender.Recommend(r.Context(), userID)
	respondJSON(w, http.StatusOK, itemsResponse{Items: items, Count: len(items)})
}

func (s *Server) handleShowcase(w http.ResponseWriter, r *http.Request) {
	if s.deps.Showcase == nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Showcase is not configured", nil)
		return
	}

	sections := s.deps.Showcase.Compose(r.Context())
	respondJSON(w, http.StatusOK, showcaseResponse{Sections: sections})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Search == nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Search is not configured", nil)
		return
	}

	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		respondError(w, r, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required", nil)
		return
	}

	limit := defaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, r, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", nil)
			return
		}
		limit = min(parsed, maxSearchLimit)
	}

	items, err := s.deps.Search.Search(r.Context(), strings.TrimSpace(q.Get("user_id")), text, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "SEARCH_ERROR", "Search failed", err)
		return
	}
	respondJSON(w, http.StatusOK, itemsResponse{Items: items, Count: len(items)})
}

func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tracker == nil {
		respondError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Event tracking is not configured", nil)
		return
	}

	var req TrackRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON event", nil)
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	s.deps.Tracker.Track(learning.NewEvent(req.UserID, req.Type, learning.Payload{
		Category: req.Category,
		EntityID: req.EntityID,
		Metadata: req.Metadata,
	}))
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
