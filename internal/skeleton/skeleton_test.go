package skeleton

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestNew_CopiesInput(t *testing.T) {
	points := map[Name]Keypoint{
		Nose: {X: 0.5, Y: 0.2, Confidence: 0.9},
	}
	s := New(points)

	points[Nose] = Keypoint{X: 0.1}
	points[LeftKnee] = Keypoint{X: 0.3}

	kp, ok := s.Get(Nose)
	if !ok {
		t.Fatal("expected nose to be present")
	}
	if kp.X != 0.5 {
		t.Errorf("skeleton changed after caller mutated input: X = %f", kp.X)
	}
	if s.Has(LeftKnee) {
		t.Error("skeleton gained a keypoint after caller mutated input")
	}
}

func TestSkeleton_WithWithout(t *testing.T) {
	base := New(map[Name]Keypoint{Nose: {X: 0.5, Y: 0.2, Confidence: 1}})

	added := base.With(LeftHip, Keypoint{X: 0.4, Y: 0.6, Confidence: 1})
	if base.Has(LeftHip) {
		t.Error("With modified the receiver")
	}
	if !added.Has(LeftHip) || added.Len() != 2 {
		t.Errorf("With result has %d keypoints, want 2", added.Len())
	}

	removed := added.Without(Nose)
	if !added.Has(Nose) {
		t.Error("Without modified the receiver")
	}
	if removed.Has(Nose) || removed.Len() != 1 {
		t.Errorf("Without result has %d keypoints, want 1", removed.Len())
	}
}

func TestSkeleton_NamesOrder(t *testing.T) {
	s := New(map[Name]Keypoint{
		RightAnkle: {},
		"tailbone": {},
		Nose:       {},
		"chin":     {},
		LeftHip:    {},
	})

	want := []Name{Nose, LeftHip, RightAnkle, "chin", "tailbone"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestSkeleton_Shares(t *testing.T) {
	a := New(map[Name]Keypoint{Nose: {}, LeftHip: {}})
	b := New(map[Name]Keypoint{LeftHip: {}})
	c := New(map[Name]Keypoint{RightKnee: {}})

	if !a.Shares(b) {
		t.Error("expected a and b to share leftHip")
	}
	if a.Shares(c) {
		t.Error("expected a and c to be disjoint")
	}
	if a.Shares(Skeleton{}) {
		t.Error("expected nothing shared with an empty skeleton")
	}
}

func TestSkeleton_JSON(t *testing.T) {
	s := New(map[Name]Keypoint{
		LeftShoulder: {X: 0.4, Y: 0.3, Confidence: 0.9},
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Skeleton
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(decoded.Points(), s.Points()) {
		t.Errorf("decoded = %v, want %v", decoded.Points(), s.Points())
	}

	empty, err := json.Marshal(Skeleton{})
	if err != nil {
		t.Fatalf("Marshal(empty) error = %v", err)
	}
	if string(empty) != "{}" {
		t.Errorf("empty skeleton encoded as %s, want {}", empty)
	}

	if err := json.Unmarshal([]byte(`[1,2]`), &decoded); err == nil {
		t.Error("expected error decoding an array")
	}
}

func TestKeypoint_Valid(t *testing.T) {
	tests := []struct {
		name string
		kp   Keypoint
		want bool
	}{
		{"normal", Keypoint{X: 0.5, Y: 0.5, Confidence: 1}, true},
		{"nan x", Keypoint{X: math.NaN(), Y: 0.5, Confidence: 1}, false},
		{"inf confidence", Keypoint{X: 0.5, Y: 0.5, Confidence: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kp.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeight(t *testing.T) {
	if got := Weight(LeftHip); got != 1.2 {
		t.Errorf("Weight(leftHip) = %f, want 1.2", got)
	}
	if got := Weight(Nose); got != 0.5 {
		t.Errorf("Weight(nose) = %f, want 0.5", got)
	}
	if got := Weight("tailbone"); got != DefaultWeight {
		t.Errorf("Weight(unknown) = %f, want %f", got, DefaultWeight)
	}
}

func TestFriendlyName(t *testing.T) {
	tests := map[Name]string{
		Nose:         "Head Position",
		LeftShoulder: "Left Shoulder",
		RightAnkle:   "Right Ankle",
		"chin":       "Chin",
	}
	for in, want := range tests {
		if got := FriendlyName(in); got != want {
			t.Errorf("FriendlyName(%q) = %q, want %q", in, got, want)
		}
	}
}
