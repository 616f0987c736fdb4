package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ayusman/asana/internal/session"
)

func TestSampleRepository(t *testing.T) {
	s := newTestStore(t)
	createPose(t, s, "tree", "Tree")
	repo := s.Samples()

	samples := []json.RawMessage{
		json.RawMessage(`{"nose":{"x":0.5,"y":0.1,"confidence":1}}`),
		json.RawMessage(`{"nose":{"x":0.51,"y":0.1,"confidence":1}}`),
	}
	if err := repo.Create("tree", samples); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByPoseID("tree")
	if err != nil {
		t.Fatalf("GetByPoseID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if got[1].SampleIndex != 1 || string(got[1].Data) != string(samples[1]) {
		t.Errorf("unexpected sample: %+v", got[1])
	}

	p, _ := s.Poses().GetByID("tree")
	if p.Samples != 2 {
		t.Errorf("pose sample count = %d, want 2", p.Samples)
	}

	if err := repo.DeleteByPoseID("tree"); err != nil {
		t.Fatalf("DeleteByPoseID: %v", err)
	}
	got, _ = repo.GetByPoseID("tree")
	if len(got) != 0 {
		t.Errorf("got %d samples after delete", len(got))
	}
	p, _ = s.Poses().GetByID("tree")
	if p.Samples != 0 {
		t.Errorf("pose sample count = %d after delete", p.Samples)
	}

	if err := repo.Create("missing", samples); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create for unknown pose: expected ErrNotFound, got %v", err)
	}
}

func TestSlotRepository(t *testing.T) {
	s := newTestStore(t)
	createPose(t, s, "mountain", "Mountain")
	createPose(t, s, "tree", "Tree")
	repo := s.Slots()

	if err := repo.Replace([]Slot{
		{Index: 7, PoseID: "mountain", Active: true},
		{Index: 9, PoseID: "tree", Active: false},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	slots, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(slots) != 2 || slots[0].Index != 0 || slots[1].Index != 1 {
		t.Fatalf("slots not renumbered: %+v", slots)
	}
	if !slots[0].Active || slots[1].Active {
		t.Errorf("unexpected active flags: %+v", slots)
	}

	if err := repo.SetActive(1, true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	slots, _ = repo.List()
	if !slots[1].Active {
		t.Error("slot 1 should be active")
	}
	if err := repo.SetActive(5, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive out of range: expected ErrNotFound, got %v", err)
	}

	if err := repo.Replace([]Slot{{PoseID: "unknown", Active: true}}); err == nil {
		t.Error("Replace with unknown pose should fail")
	}
	slots, _ = repo.List()
	if len(slots) != 2 {
		t.Errorf("failed Replace should roll back, got %d slots", len(slots))
	}
}

func TestCueRepository(t *testing.T) {
	s := newTestStore(t)
	createPose(t, s, "tree", "Tree")
	createPose(t, s, "mountain", "Mountain")
	repo := s.Cues()

	cues := []*Cue{
		{ID: "any", EventKind: "pose.completed", PluginName: "announce", ActionName: "say", Enabled: true},
		{ID: "tree", PoseID: "tree", EventKind: "pose.completed", PluginName: "notify", ActionName: "show",
			Config: json.RawMessage(`{"title":"Tree"}`), Enabled: true},
		{ID: "off", EventKind: "pose.completed", PluginName: "announce", ActionName: "say", Enabled: false},
		{ID: "lost", EventKind: "hold.lost", PluginName: "announce", ActionName: "say", Enabled: true},
	}
	for _, c := range cues {
		if err := repo.Create(c); err != nil {
			t.Fatalf("Create %s: %v", c.ID, err)
		}
	}

	got, err := repo.GetByID("tree")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PoseID != "tree" || string(got.Config) != `{"title":"Tree"}` {
		t.Errorf("unexpected cue: %+v", got)
	}
	global, _ := repo.GetByID("any")
	if global.PoseID != "" || string(global.Config) != "{}" {
		t.Errorf("unexpected global cue: %+v", global)
	}

	matched, err := repo.ListFor("pose.completed", "tree")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("ListFor(tree) returned %d cues, want 2", len(matched))
	}
	matched, _ = repo.ListFor("pose.completed", "mountain")
	if len(matched) != 1 || matched[0].ID != "any" {
		t.Errorf("ListFor(mountain) = %v", matched)
	}

	all, _ := repo.List()
	if len(all) != 4 {
		t.Errorf("List returned %d cues, want 4", len(all))
	}

	got.Enabled = false
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	matched, _ = repo.ListFor("pose.completed", "tree")
	if len(matched) != 1 {
		t.Errorf("disabled cue still listed: %d", len(matched))
	}

	if err := repo.Delete("tree"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID("tree"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("tree"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	open := session.Summary{ID: "s1", StartedAt: start, Frames: 10, AverageAccuracy: 60}
	if err := repo.Save(open); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.EndedAt.IsZero() || got.Frames != 10 {
		t.Errorf("unexpected open session: %+v", got)
	}

	closed := open
	closed.EndedAt = start.Add(10 * time.Minute)
	closed.Frames = 20
	closed.Completions = 2
	closed.BestPose = "tree"
	if err := repo.Save(closed); err != nil {
		t.Fatalf("Save closed: %v", err)
	}
	got, _ = repo.Get("s1")
	if got.Duration() != 10*time.Minute || got.Completions != 2 || got.BestPose != "tree" {
		t.Errorf("unexpected closed session: %+v", got)
	}

	if err := repo.Save(session.Summary{ID: "s2", StartedAt: start.Add(time.Hour)}); err != nil {
		t.Fatalf("Save s2: %v", err)
	}
	list, err := repo.List(1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "s2" {
		t.Errorf("List(1) = %+v", list)
	}
	list, _ = repo.List(0)
	if len(list) != 2 {
		t.Errorf("List(0) returned %d sessions, want 2", len(list))
	}

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPerformanceRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Performance()

	if err := repo.Record([]session.PoseStats{
		{PoseID: "tree", Frames: 2, AverageAccuracy: 50, BestAccuracy: 60, Completions: 1},
		{PoseID: "idle", Frames: 0},
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record([]session.PoseStats{
		{PoseID: "tree", Frames: 2, AverageAccuracy: 80, BestAccuracy: 90},
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	p, err := repo.Get("tree")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Attempts != 4 || p.AverageAccuracy != 65 || p.BestAccuracy != 90 || p.Completions != 1 {
		t.Errorf("unexpected performance: %+v", p)
	}

	if _, err := repo.Get("idle"); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty stats should not be recorded, got %v", err)
	}

	list, _ := repo.List()
	if len(list) != 1 {
		t.Errorf("List returned %d records, want 1", len(list))
	}
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("threshold"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Set("threshold", "50"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set("threshold", "65"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := repo.Get("threshold")
	if err != nil || v != "65" {
		t.Errorf("Get = %q, %v", v, err)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all["threshold"] != "65" {
		t.Errorf("All = %v", all)
	}
}
