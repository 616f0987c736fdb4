package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/asana/internal/app"
	"github.com/ayusman/asana/internal/library"
	"github.com/ayusman/asana/internal/session"
	"github.com/ayusman/asana/internal/skeleton"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(app.Config{})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return a
}

func TestTrainingHandler_Session(t *testing.T) {
	a := newTestApp(t)
	handler := NewTrainingHandler(a)
	scoring := NewScoringHandler(a)
	frame := http.HandlerFunc(scoring.Frame)

	mountain, _ := library.Lookup("mountain")

	rec := do(t, frame, http.MethodPost, "/api/training/frame", mountain.Reference)
	if rec.Code != http.StatusConflict {
		t.Errorf("frame outside session: expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = do(t, handler, http.MethodPost, "/api/training/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var started sessionResponse
	json.NewDecoder(rec.Body).Decode(&started)
	if started.SessionID == "" {
		t.Fatal("expected a session ID")
	}

	rec = do(t, frame, http.MethodPost, "/api/training/frame", mountain.Reference)
	if rec.Code != http.StatusOK {
		t.Fatalf("frame expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var fr app.FrameResult
	json.NewDecoder(rec.Body).Decode(&fr)
	if fr.PoseID != "mountain" || fr.Result.Overall < 80 {
		t.Errorf("unexpected frame result: pose %s overall %.1f", fr.PoseID, fr.Result.Overall)
	}

	rec = do(t, handler, http.MethodGet, "/api/training", nil)
	var st app.Status
	json.NewDecoder(rec.Body).Decode(&st)
	if !st.Training || st.SessionID != started.SessionID || st.Hold.State.String() != "holding" {
		t.Errorf("unexpected status: %+v", st)
	}

	rec = do(t, handler, http.MethodPost, "/api/training/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var summary session.Summary
	json.NewDecoder(rec.Body).Decode(&summary)
	if summary.Frames != 1 {
		t.Errorf("expected 1 frame, got %d", summary.Frames)
	}

	rec = do(t, handler, http.MethodPost, "/api/training/stop", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second stop expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestTrainingHandler_SelectAndSlots(t *testing.T) {
	a := newTestApp(t)
	handler := NewTrainingHandler(a)

	rec := do(t, handler, http.MethodPost, "/api/training/select", `{"pose":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := a.Status().PoseID; got != "tree" {
		t.Errorf("expected tree, got %s", got)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "inactive", body: `{"pose":4}`, want: http.StatusConflict},
		{name: "out of range", body: `{"pose":42}`, want: http.StatusNotFound},
		{name: "missing", body: `{}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/training/select", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec = do(t, handler, http.MethodPut, "/api/training/slots/4", `{"active":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("slot update expected status %d, got %d", http.StatusOK, rec.Code)
	}
	rec = do(t, handler, http.MethodPost, "/api/training/advance", nil)
	var adv advanceResponse
	json.NewDecoder(rec.Body).Decode(&adv)
	if adv.Pose != 3 {
		t.Errorf("expected advance to slot 3, got %d", adv.Pose)
	}

	rec = do(t, handler, http.MethodPut, "/api/training/slots", slotsRequest{Slots: []library.Slot{{PoseID: "crow", Active: true}}})
	if rec.Code != http.StatusOK {
		t.Fatalf("replace expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = do(t, handler, http.MethodPost, "/api/training/advance", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("advance with one slot expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestSettingsHandler(t *testing.T) {
	a := newTestApp(t)
	handler := NewSettingsHandler(a)

	rec := do(t, handler, http.MethodPut, "/api/settings", `{"hold_seconds":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got app.Settings
	json.NewDecoder(rec.Body).Decode(&got)
	if got.HoldSeconds != 10 || got.Threshold != app.DefaultSettings().Threshold {
		t.Errorf("partial update should keep other fields: %+v", got)
	}

	rec = do(t, handler, http.MethodPut, "/api/settings", `{"detection_threshold":101}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid threshold expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestScoringHandler(t *testing.T) {
	a := newTestApp(t)
	scoring := NewScoringHandler(a)
	tree, _ := library.Lookup("tree")

	rec := do(t, http.HandlerFunc(scoring.Compare), http.MethodPost, "/api/compare",
		map[string]any{"pose_id": "tree", "detected": tree.Reference})
	if rec.Code != http.StatusOK {
		t.Fatalf("compare expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var cmp compareResponse
	json.NewDecoder(rec.Body).Decode(&cmp)
	if !cmp.Matched || len(cmp.Feedback.Messages) == 0 {
		t.Errorf("unexpected compare result: %+v", cmp)
	}

	partial := tree.Reference.Without(skeleton.LeftWrist).Without(skeleton.RightWrist)
	rec = do(t, http.HandlerFunc(scoring.Compare), http.MethodPost, "/api/compare",
		map[string]any{"pose_id": "tree", "detected": partial, "max_suggestions": 1})
	cmp = compareResponse{}
	json.NewDecoder(rec.Body).Decode(&cmp)
	if len(cmp.Feedback.Suggestions) != 1 {
		t.Errorf("max_suggestions=1 returned %d suggestions", len(cmp.Feedback.Suggestions))
	}

	rec = do(t, http.HandlerFunc(scoring.Compare), http.MethodPost, "/api/compare", `{"detected":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("compare without reference expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = do(t, http.HandlerFunc(scoring.Recognize), http.MethodPost, "/api/recognize",
		map[string]any{"skeleton": tree.Reference})
	var recognized struct {
		Matches []matchResponse `json:"matches"`
	}
	json.NewDecoder(rec.Body).Decode(&recognized)
	if len(recognized.Matches) == 0 || recognized.Matches[0].PoseID != "tree" {
		t.Errorf("expected tree first, got %+v", recognized.Matches)
	}
}
