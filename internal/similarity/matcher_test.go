package similarity

import (
	"testing"

	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/testsupport"
)

func TestMatcher_Match(t *testing.T) {
	matcher := NewMatcher()

	ref := standing()
	armsUp := ref.
		With(skeleton.LeftWrist, skeleton.Keypoint{X: 0.40, Y: 0.05, Confidence: 1}).
		With(skeleton.RightWrist, skeleton.Keypoint{X: 0.60, Y: 0.05, Confidence: 1}).
		With(skeleton.LeftElbow, skeleton.Keypoint{X: 0.38, Y: 0.15, Confidence: 1}).
		With(skeleton.RightElbow, skeleton.Keypoint{X: 0.62, Y: 0.15, Confidence: 1})

	matcher.AddReference(&Reference{ID: "mountain", Name: "Mountain", Skeleton: ref})
	matcher.AddReference(&Reference{ID: "upward-salute", Name: "Upward Salute", Skeleton: armsUp})

	matches := matcher.Match(ref, 50)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].Reference.ID != "mountain" {
		t.Errorf("best match = %q, want %q", matches[0].Reference.ID, "mountain")
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Result.Overall > matches[i-1].Result.Overall {
			t.Errorf("matches not sorted by score at index %d", i)
		}
	}
}

func TestMatcher_NoMatchBelowThreshold(t *testing.T) {
	matcher := NewMatcher()
	ref := standing()
	matcher.AddReference(&Reference{ID: "mountain", Skeleton: ref})

	weak := testsupport.WithConfidence(ref, 0.1)
	if matches := matcher.Match(weak, 50); len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestMatcher_ReplaceAndRemove(t *testing.T) {
	matcher := NewMatcher()
	matcher.AddReference(&Reference{ID: "a", Name: "first", Skeleton: standing()})
	matcher.AddReference(&Reference{ID: "a", Name: "second", Skeleton: standing()})
	matcher.AddReference(nil)

	if matcher.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", matcher.Len())
	}
	if r, _ := matcher.Reference("a"); r.Name != "second" {
		t.Errorf("reference name = %q, want %q", r.Name, "second")
	}

	matcher.RemoveReference("a")
	if matcher.Len() != 0 {
		t.Errorf("Len() after remove = %d, want 0", matcher.Len())
	}
	if matches := matcher.Match(standing(), 0); matches != nil {
		t.Errorf("expected no matches from empty matcher, got %v", matches)
	}
}
