package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayusman/asana/internal/skeleton"
)

func createPose(t *testing.T, s *Store, id, name string) *Pose {
	t.Helper()
	p := &Pose{ID: id, Name: name, Category: "standing", Difficulty: 2}
	if err := s.Poses().Create(p); err != nil {
		t.Fatalf("create pose %s: %v", id, err)
	}
	return p
}

func TestPoseRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Poses()

	createPose(t, s, "mountain", "Mountain")

	got, err := repo.GetByID("mountain")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Mountain" || got.Difficulty != 2 || got.Category != "standing" {
		t.Errorf("unexpected pose: %+v", got)
	}

	byName, err := repo.GetByName("Mountain")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != "mountain" {
		t.Errorf("GetByName returned %q", byName.ID)
	}

	got.Description = "Stand tall"
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID("mountain")
	if got.Description != "Stand tall" {
		t.Errorf("description not updated: %q", got.Description)
	}

	if err := repo.Delete("mountain"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID("mountain"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPoseRepository_DefaultDifficulty(t *testing.T) {
	s := newTestStore(t)
	p := &Pose{ID: "x", Name: "X"}
	if err := s.Poses().Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Difficulty != 1 {
		t.Errorf("Difficulty = %d, want 1", p.Difficulty)
	}
}

func TestPoseRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Poses()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(&Pose{ID: "missing", Name: "M", Difficulty: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.SetReference("missing", skeleton.Skeleton{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetReference: expected ErrNotFound, got %v", err)
	}
}

func TestPoseRepository_ListOrder(t *testing.T) {
	s := newTestStore(t)
	repo := s.Poses()

	for _, p := range []*Pose{
		{ID: "crow", Name: "Crow", Difficulty: 4},
		{ID: "tree", Name: "Tree", Difficulty: 2},
		{ID: "chair", Name: "Chair", Difficulty: 2},
	} {
		if err := repo.Create(p); err != nil {
			t.Fatalf("Create %s: %v", p.ID, err)
		}
	}

	poses, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"chair", "tree", "crow"}
	if len(poses) != len(want) {
		t.Fatalf("got %d poses, want %d", len(poses), len(want))
	}
	for i, id := range want {
		if poses[i].ID != id {
			t.Errorf("poses[%d] = %q, want %q", i, poses[i].ID, id)
		}
	}
}

func TestPoseRepository_Reference(t *testing.T) {
	s := newTestStore(t)
	repo := s.Poses()
	createPose(t, s, "tree", "Tree")

	ref := skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		skeleton.Nose:      {X: 0.5, Y: 0.1, Confidence: 1},
		skeleton.LeftKnee:  {X: 0.6, Y: 0.6, Confidence: 0.9},
		skeleton.RightKnee: {X: 0.45, Y: 0.7, Confidence: 0.8},
	})
	if err := repo.SetReference("tree", ref); err != nil {
		t.Fatalf("SetReference: %v", err)
	}

	got, err := repo.Reference("tree")
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("reference has %d keypoints, want 3", got.Len())
	}
	kp, ok := got.Get(skeleton.LeftKnee)
	if !ok || kp.X != 0.6 || kp.Confidence != 0.9 {
		t.Errorf("leftKnee = %+v, %v", kp, ok)
	}

	// Replacing drops the old keypoints.
	if err := repo.SetReference("tree", ref.Without(skeleton.Nose)); err != nil {
		t.Fatalf("SetReference: %v", err)
	}
	got, _ = repo.Reference("tree")
	if got.Has(skeleton.Nose) || got.Len() != 2 {
		t.Errorf("reference not replaced: %v", got.Names())
	}

	empty, err := repo.Reference("unknown")
	if err != nil || !empty.Empty() {
		t.Errorf("unknown pose reference = %v, %v; want empty", empty.Names(), err)
	}
}

func TestPoseRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	createPose(t, s, "tree", "Tree")

	ref := skeleton.New(map[skeleton.Name]skeleton.Keypoint{skeleton.Nose: {X: 0.5, Y: 0.1, Confidence: 1}})
	if err := s.Poses().SetReference("tree", ref); err != nil {
		t.Fatalf("SetReference: %v", err)
	}
	if err := s.Samples().Create("tree", []json.RawMessage{json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("Samples.Create: %v", err)
	}
	if err := s.Cues().Create(&Cue{ID: "c1", PoseID: "tree", EventKind: "pose.completed", PluginName: "announce", ActionName: "say", Enabled: true}); err != nil {
		t.Fatalf("Cues.Create: %v", err)
	}

	if err := s.Poses().Delete("tree"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, table := range []string{"pose_keypoints", "pose_samples", "cues"} {
		var n int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after delete, want 0", table, n)
		}
	}
}

func TestPoseRepository_DeleteInUse(t *testing.T) {
	s := newTestStore(t)
	createPose(t, s, "tree", "Tree")
	if err := s.Slots().Replace([]Slot{{PoseID: "tree", Active: true}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if err := s.Poses().Delete("tree"); !errors.Is(err, ErrInUse) {
		t.Errorf("expected ErrInUse, got %v", err)
	}
}

func TestPoseRepository_EnsureBuiltin(t *testing.T) {
	s := newTestStore(t)
	repo := s.Poses()
	ref := skeleton.New(map[skeleton.Name]skeleton.Keypoint{skeleton.Nose: {X: 0.5, Y: 0.1, Confidence: 1}})

	inserted, err := repo.EnsureBuiltin(&Pose{ID: "mountain", Name: "Mountain", Difficulty: 1}, ref)
	if err != nil || !inserted {
		t.Fatalf("first EnsureBuiltin = %v, %v", inserted, err)
	}
	inserted, err = repo.EnsureBuiltin(&Pose{ID: "mountain", Name: "Mountain", Difficulty: 1}, ref)
	if err != nil || inserted {
		t.Fatalf("second EnsureBuiltin = %v, %v", inserted, err)
	}

	p, _ := repo.GetByID("mountain")
	if !p.Builtin {
		t.Error("pose should be marked builtin")
	}
}
