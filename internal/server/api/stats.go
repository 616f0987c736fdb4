package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/asana/internal/session"
	"github.com/ayusman/asana/internal/store"
)

// StatsHandler serves saved sessions and cumulative pose performance.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

type sessionSummaryResponse struct {
	session.Summary
	DurationSeconds float64 `json:"duration_seconds"`
}

func toSessionResponse(s session.Summary) sessionSummaryResponse {
	return sessionSummaryResponse{Summary: s, DurationSeconds: s.Duration().Seconds()}
}

// Sessions handles GET /api/sessions and GET /api/sessions/{id}. The list
// takes an optional limit query parameter.
func (h *StatsHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	if id != "" {
		s, err := h.store.Sessions().Get(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get session")
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(s))
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	out := make([]sessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// Performance handles GET /api/performance.
func (h *StatsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	perf, err := h.store.Performance().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list performance")
		return
	}
	if perf == nil {
		perf = []store.Performance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"poses": perf})
}
