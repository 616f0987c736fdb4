package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/plugin"
	"github.com/ayusman/asana/internal/store"
)

// cueKinds are the events a cue can be bound to.
var cueKinds = map[events.Kind]bool{
	events.KindHoldStarted:    true,
	events.KindHoldLost:       true,
	events.KindPoseCompleted:  true,
	events.KindPoseAdvanced:   true,
	events.KindAdvanceSkipped: true,
	events.KindPoseSelected:   true,
	events.KindSessionStarted: true,
	events.KindSessionEnded:   true,
}

// CueHandler handles HTTP requests for cue resources.
type CueHandler struct {
	store   *store.Store
	plugins plugin.Lookup
}

// NewCueHandler creates a new CueHandler. When plugins is non-nil, cues must
// name a discovered plugin and one of its actions.
func NewCueHandler(s *store.Store, plugins plugin.Lookup) *CueHandler {
	return &CueHandler{store: s, plugins: plugins}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *CueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/cues")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createCueRequest struct {
	PoseID     string          `json:"pose_id"`
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
}

type updateCueRequest struct {
	PoseID     *string         `json:"pose_id"`
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type cueResponse struct {
	ID         string          `json:"id"`
	PoseID     string          `json:"pose_id,omitempty"`
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listCuesResponse struct {
	Cues []cueResponse `json:"cues"`
}

func toCueResponse(c *store.Cue) cueResponse {
	config := c.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	return cueResponse{
		ID:         c.ID,
		PoseID:     c.PoseID,
		EventKind:  c.EventKind,
		PluginName: c.PluginName,
		ActionName: c.ActionName,
		Config:     config,
		Enabled:    c.Enabled,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

// validate checks the binding of c and returns a client-facing message.
func (h *CueHandler) validate(c *store.Cue) (int, string) {
	if !cueKinds[events.Kind(c.EventKind)] {
		return http.StatusBadRequest, "Unknown event_kind"
	}
	if c.PoseID != "" {
		if _, err := h.store.Poses().GetByID(c.PoseID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return http.StatusBadRequest, "Pose not found"
			}
			return http.StatusInternalServerError, "Failed to verify pose"
		}
	}
	if h.plugins != nil {
		p, err := h.plugins.Get(c.PluginName)
		if err != nil {
			return http.StatusBadRequest, "Plugin not found"
		}
		if !p.Supports(c.ActionName) {
			return http.StatusBadRequest, "Plugin does not support this action"
		}
	}
	if len(c.Config) > 0 && !json.Valid(c.Config) {
		return http.StatusBadRequest, "Invalid config"
	}
	return 0, ""
}

// list handles GET /api/cues. The optional pose query parameter filters the
// result to cues that fire for that pose.
func (h *CueHandler) list(w http.ResponseWriter, r *http.Request) {
	cues, err := h.store.Cues().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cues")
		return
	}

	pose := r.URL.Query().Get("pose")
	response := listCuesResponse{Cues: make([]cueResponse, 0, len(cues))}
	for _, c := range cues {
		if pose != "" && c.PoseID != "" && c.PoseID != pose {
			continue
		}
		response.Cues = append(response.Cues, toCueResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/cues/{id}.
func (h *CueHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	cue, err := h.store.Cues().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cue not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get cue")
		return
	}

	writeJSON(w, http.StatusOK, toCueResponse(cue))
}

// create handles POST /api/cues.
func (h *CueHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventKind == "" {
		writeError(w, http.StatusBadRequest, "event_kind is required")
		return
	}
	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}

	config := req.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	cue := &store.Cue{
		ID:         uuid.New().String(),
		PoseID:     req.PoseID,
		EventKind:  req.EventKind,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     config,
		Enabled:    true,
	}
	if status, msg := h.validate(cue); status != 0 {
		writeError(w, status, msg)
		return
	}

	if err := h.store.Cues().Create(cue); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create cue")
		return
	}

	writeJSON(w, http.StatusCreated, toCueResponse(cue))
}

// update handles PUT /api/cues/{id}. An empty pose_id string binds the cue to
// every pose.
func (h *CueHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	cue, err := h.store.Cues().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cue not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get cue")
		return
	}

	var req updateCueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PoseID != nil {
		cue.PoseID = *req.PoseID
	}
	if req.EventKind != "" {
		cue.EventKind = req.EventKind
	}
	if req.PluginName != "" {
		cue.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		cue.ActionName = req.ActionName
	}
	if req.Config != nil {
		cue.Config = req.Config
	}
	if req.Enabled != nil {
		cue.Enabled = *req.Enabled
	}
	if status, msg := h.validate(cue); status != 0 {
		writeError(w, status, msg)
		return
	}

	if err := h.store.Cues().Update(cue); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update cue")
		return
	}

	writeJSON(w, http.StatusOK, toCueResponse(cue))
}

// delete handles DELETE /api/cues/{id}.
func (h *CueHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Cues().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cue not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete cue")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PluginLister lists discovered plugins.
type PluginLister interface {
	List() []*plugin.Plugin
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// PluginsHandler serves GET /api/plugins.
func PluginsHandler(plugins PluginLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		list := plugins.List()
		out := make([]pluginResponse, 0, len(list))
		for _, p := range list {
			out = append(out, pluginResponse{
				Name:        p.Manifest.Name,
				Version:     p.Manifest.Version,
				Description: p.Manifest.Description,
				Actions:     p.Manifest.Actions,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"plugins": out})
	})
}
