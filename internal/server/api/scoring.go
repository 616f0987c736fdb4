package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/asana/internal/app"
	"github.com/ayusman/asana/internal/similarity"
	"github.com/ayusman/asana/internal/skeleton"
)

// ScoringHandler scores skeletons without touching the training session.
type ScoringHandler struct {
	app *app.App
}

// NewScoringHandler creates a new ScoringHandler.
func NewScoringHandler(a *app.App) *ScoringHandler {
	return &ScoringHandler{app: a}
}

type compareRequest struct {
	// PoseID selects a stored reference. Reference is used when it is empty.
	PoseID    string            `json:"pose_id"`
	Reference skeleton.Skeleton `json:"reference"`
	Detected  skeleton.Skeleton `json:"detected"`
	Threshold *float64          `json:"threshold"`
	// MaxSuggestions overrides the configured suggestion count when positive.
	MaxSuggestions int `json:"max_suggestions"`
}

type compareResponse struct {
	similarity.Result
	Feedback similarity.Feedback `json:"feedback"`
}

type recognizeRequest struct {
	Skeleton  skeleton.Skeleton `json:"skeleton"`
	Threshold *float64          `json:"threshold"`
}

type matchResponse struct {
	PoseID   string  `json:"pose_id"`
	PoseName string  `json:"pose_name"`
	Overall  float64 `json:"overall"`
	Matched  bool    `json:"matched"`
}

func (h *ScoringHandler) threshold(v *float64) float64 {
	if v != nil {
		return *v
	}
	return h.app.Settings().Threshold
}

// Compare handles POST /api/compare.
func (h *ScoringHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ref := req.Reference
	hint := similarity.HintFunc(nil)
	if req.PoseID != "" {
		pose, ok := h.app.Pose(req.PoseID)
		if !ok {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		ref, hint = pose.Reference, pose.Hint
	}
	if ref.Empty() {
		writeError(w, http.StatusBadRequest, "A pose_id or a reference is required")
		return
	}

	result := similarity.Compare(ref, req.Detected, h.threshold(req.Threshold))
	k := h.app.Settings().MaxSuggestions
	if req.MaxSuggestions > 0 {
		k = req.MaxSuggestions
	}
	feedback := similarity.Suggest(result.Keypoints, k, hint)
	writeJSON(w, http.StatusOK, compareResponse{Result: result, Feedback: feedback})
}

// Recognize handles POST /api/recognize and ranks every pose against the
// skeleton.
func (h *ScoringHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	matches := h.app.Recognize(req.Skeleton, h.threshold(req.Threshold))
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{
			PoseID:   m.Reference.ID,
			PoseName: m.Reference.Name,
			Overall:  m.Result.Overall,
			Matched:  m.Result.Matched,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

// Frame handles POST /api/training/frame: it scores a skeleton detected by
// the client against the current pose of the running session.
func (h *ScoringHandler) Frame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sk skeleton.Skeleton
	if err := json.NewDecoder(r.Body).Decode(&sk); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid skeleton")
		return
	}

	fr, err := h.app.ProcessSkeleton(r.Context(), sk)
	if errors.Is(err, app.ErrNotTraining) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to score frame")
		return
	}
	writeJSON(w, http.StatusOK, fr)
}
