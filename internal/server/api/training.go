package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/asana/internal/app"
	"github.com/ayusman/asana/internal/hold"
	"github.com/ayusman/asana/internal/library"
)

// TrainingHandler controls the training session.
type TrainingHandler struct {
	app *app.App
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(a *app.App) *TrainingHandler {
	return &TrainingHandler{app: a}
}

// ServeHTTP routes /api/training and its sub-resources.
func (h *TrainingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/training")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Status())
	case parts[0] == "slots":
		h.slots(w, r, parts[1:])
	case len(parts) == 1 && r.Method == http.MethodPost:
		h.command(w, r, parts[0])
	case len(parts) == 1:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type selectRequest struct {
	Pose *int `json:"pose"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type advanceResponse struct {
	Pose    int    `json:"pose"`
	Message string `json:"message,omitempty"`
}

func (h *TrainingHandler) command(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	switch name {
	case "start":
		id, err := h.app.StartSession(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to start session")
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: id})

	case "stop":
		summary, err := h.app.StopSession(ctx)
		if errors.Is(err, app.ErrNotTraining) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Session ended but could not be saved")
			return
		}
		writeJSON(w, http.StatusOK, summary)

	case "advance":
		pose, err := h.app.Advance(ctx)
		if errors.Is(err, hold.ErrNoActivePose) {
			writeJSON(w, http.StatusConflict, advanceResponse{Pose: pose, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, advanceResponse{Pose: pose})

	case "select":
		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pose == nil {
			writeError(w, http.StatusBadRequest, "pose is required")
			return
		}
		if err := h.app.SelectPose(ctx, *req.Pose); err != nil {
			writeHoldError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Status())

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type slotRequest struct {
	Active *bool `json:"active"`
}

type slotsRequest struct {
	Slots []library.Slot `json:"slots"`
}

// slots handles GET/PUT /api/training/slots and PUT /api/training/slots/{i}.
func (h *TrainingHandler) slots(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.app.Status().Slots)
		case http.MethodPut:
			var req slotsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid JSON")
				return
			}
			if err := h.app.ReplaceSlots(req.Slots); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, h.app.Status().Slots)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(rest) != 1 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	index, err := strconv.Atoi(rest[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot index")
		return
	}
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		writeError(w, http.StatusBadRequest, "active is required")
		return
	}
	if err := h.app.SetSlotActive(index, *req.Active); err != nil {
		writeHoldError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Status().Slots[index])
}

func writeHoldError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hold.ErrPoseOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, hold.ErrPoseInactive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	app *app.App
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Settings())
	case http.MethodPut:
		s := h.app.Settings()
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := h.app.UpdateSettings(s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.app.Settings())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
