package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/asana/internal/library"
	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/store"
)

// PoseCache is told when stored poses change so it can refresh what it scores
// against.
type PoseCache interface {
	ReloadPose(id string) error
	RemovePose(id string)
}

// PoseHandler handles HTTP requests for pose resources.
type PoseHandler struct {
	store   *store.Store
	cache   PoseCache
	samples *SamplesHandler
}

// NewPoseHandler creates a new PoseHandler. cache may be nil.
func NewPoseHandler(s *store.Store, cache PoseCache) *PoseHandler {
	return &PoseHandler{
		store:   s,
		cache:   cache,
		samples: NewSamplesHandler(s, cache),
	}
}

// ServeHTTP routes /api/poses, /api/poses/{id}, /api/poses/{id}/reference and
// /api/poses/{id}/samples.
func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/poses")
	path = strings.Trim(path, "/")

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

	parts := strings.Split(path, "/")
	id := parts[0]
	if len(parts) == 2 {
		switch parts[1] {
		case "reference":
			h.reference(w, r, id)
		case "samples":
			h.samples.serve(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "Not found")
		}
		return
	}
	if len(parts) > 2 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

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

type poseRequest struct {
	Name         string `json:"name"`
	SanskritName string `json:"sanskrit_name"`
	Category     string `json:"category"`
	Difficulty   int    `json:"difficulty"`
	Description  string `json:"description"`
}

type poseResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SanskritName string   `json:"sanskrit_name,omitempty"`
	Category     string   `json:"category,omitempty"`
	Difficulty   int      `json:"difficulty"`
	Description  string   `json:"description,omitempty"`
	Adjustments  []string `json:"adjustments,omitempty"`
	Builtin      bool     `json:"builtin"`
	Samples      int      `json:"samples"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type listPosesResponse struct {
	Poses []poseResponse `json:"poses"`
}

func toPoseResponse(p *store.Pose) poseResponse {
	resp := poseResponse{
		ID:           p.ID,
		Name:         p.Name,
		SanskritName: p.SanskritName,
		Category:     p.Category,
		Difficulty:   p.Difficulty,
		Description:  p.Description,
		Builtin:      p.Builtin,
		Samples:      p.Samples,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
	if builtin, ok := library.Lookup(p.ID); ok {
		resp.Adjustments = builtin.Adjustments
	}
	return resp
}

func (h *PoseHandler) notify(id string) {
	if h.cache == nil {
		return
	}
	h.cache.ReloadPose(id)
}

// list handles GET /api/poses. The optional category query parameter filters
// the result.
func (h *PoseHandler) list(w http.ResponseWriter, r *http.Request) {
	poses, err := h.store.Poses().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list poses")
		return
	}

	category := r.URL.Query().Get("category")
	response := listPosesResponse{Poses: make([]poseResponse, 0, len(poses))}
	for _, p := range poses {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		response.Poses = append(response.Poses, toPoseResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/poses/{id}.
func (h *PoseHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	pose, err := h.store.Poses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pose")
		return
	}

	writeJSON(w, http.StatusOK, toPoseResponse(pose))
}

// create handles POST /api/poses. New poses have no reference until one is
// uploaded or trained from samples.
func (h *PoseHandler) create(w http.ResponseWriter, r *http.Request) {
	var req poseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if _, err := h.store.Poses().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "A pose with this name already exists")
		return
	}

	pose := &store.Pose{
		ID:           uuid.New().String(),
		Name:         req.Name,
		SanskritName: req.SanskritName,
		Category:     req.Category,
		Difficulty:   library.ClampDifficulty(req.Difficulty),
		Description:  req.Description,
	}

	if err := h.store.Poses().Create(pose); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create pose")
		return
	}
	h.notify(pose.ID)

	writeJSON(w, http.StatusCreated, toPoseResponse(pose))
}

// update handles PUT /api/poses/{id}. Empty fields keep their current value.
func (h *PoseHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	pose, err := h.store.Poses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pose")
		return
	}

	var req poseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		pose.Name = req.Name
	}
	if req.SanskritName != "" {
		pose.SanskritName = req.SanskritName
	}
	if req.Category != "" {
		pose.Category = req.Category
	}
	if req.Difficulty != 0 {
		pose.Difficulty = library.ClampDifficulty(req.Difficulty)
	}
	if req.Description != "" {
		pose.Description = req.Description
	}

	if err := h.store.Poses().Update(pose); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update pose")
		return
	}
	h.notify(id)

	writeJSON(w, http.StatusOK, toPoseResponse(pose))
}

// delete handles DELETE /api/poses/{id}.
func (h *PoseHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Poses().Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Pose not found")
		case errors.Is(err, store.ErrInUse):
			writeError(w, http.StatusConflict, "Pose is part of the training sequence")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to delete pose")
		}
		return
	}
	if h.cache != nil {
		h.cache.RemovePose(id)
	}

	w.WriteHeader(http.StatusNoContent)
}

// reference handles GET and PUT /api/poses/{id}/reference.
func (h *PoseHandler) reference(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		if _, err := h.store.Poses().GetByID(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Pose not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get pose")
			return
		}
		ref, err := h.store.Poses().Reference(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load reference")
			return
		}
		writeJSON(w, http.StatusOK, ref)

	case http.MethodPut:
		var ref skeleton.Skeleton
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid skeleton")
			return
		}
		if ref.Empty() {
			writeError(w, http.StatusBadRequest, "Reference must contain at least one keypoint")
			return
		}
		for _, name := range ref.Names() {
			if !skeleton.Known(name) {
				writeError(w, http.StatusBadRequest, "Unknown keypoint: "+string(name))
				return
			}
		}
		if err := h.store.Poses().SetReference(id, ref); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Pose not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save reference")
			return
		}
		h.notify(id)
		writeJSON(w, http.StatusOK, ref)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
