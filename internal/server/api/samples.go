package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/asana/internal/similarity"
	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/store"
)

// SamplesHandler handles HTTP requests for pose sample resources. Posting
// samples retrains the pose reference from them.
type SamplesHandler struct {
	store   *store.Store
	cache   PoseCache
	trainer *similarity.Trainer
}

// NewSamplesHandler creates a new SamplesHandler. cache may be nil.
func NewSamplesHandler(s *store.Store, cache PoseCache) *SamplesHandler {
	return &SamplesHandler{store: s, cache: cache, trainer: similarity.NewTrainer()}
}

// serve handles /api/poses/{id}/samples.
func (h *SamplesHandler) serve(w http.ResponseWriter, r *http.Request, poseID string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, poseID)
	case http.MethodPost:
		h.create(w, r, poseID)
	case http.MethodDelete:
		h.delete(w, r, poseID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

type createSamplesResponse struct {
	Samples   int               `json:"samples"`
	Reference skeleton.Skeleton `json:"reference"`
}

type sampleResponse struct {
	ID          int64           `json:"id"`
	PoseID      string          `json:"pose_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// list handles GET /api/poses/{id}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, poseID string) {
	samples, err := h.store.Samples().GetByPoseID(poseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			PoseID:      s.PoseID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   formatTime(s.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/poses/{id}/samples. The samples replace any
// previous ones and their average becomes the new reference.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, poseID string) {
	if _, err := h.store.Poses().GetByID(poseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify pose")
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	ref, err := h.trainer.Train(req.Samples)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Samples().Create(poseID, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}
	if err := h.store.Poses().SetReference(poseID, ref); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save reference")
		return
	}
	if h.cache != nil {
		h.cache.ReloadPose(poseID)
	}

	writeJSON(w, http.StatusCreated, createSamplesResponse{Samples: len(req.Samples), Reference: ref})
}

// delete handles DELETE /api/poses/{id}/samples. The reference is kept.
func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request, poseID string) {
	if err := h.store.Samples().DeleteByPoseID(poseID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
