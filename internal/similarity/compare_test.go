package similarity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/testsupport"
)

// standing returns a full-body reference with every confidence at 1.
func standing() skeleton.Skeleton {
	return skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		skeleton.Nose:          {X: 0.50, Y: 0.20, Confidence: 1},
		skeleton.LeftShoulder:  {X: 0.40, Y: 0.30, Confidence: 1},
		skeleton.RightShoulder: {X: 0.60, Y: 0.30, Confidence: 1},
		skeleton.LeftElbow:     {X: 0.35, Y: 0.40, Confidence: 1},
		skeleton.RightElbow:    {X: 0.65, Y: 0.40, Confidence: 1},
		skeleton.LeftWrist:     {X: 0.33, Y: 0.50, Confidence: 1},
		skeleton.RightWrist:    {X: 0.67, Y: 0.50, Confidence: 1},
		skeleton.LeftHip:       {X: 0.45, Y: 0.60, Confidence: 1},
		skeleton.RightHip:      {X: 0.55, Y: 0.60, Confidence: 1},
		skeleton.LeftKnee:      {X: 0.45, Y: 0.75, Confidence: 1},
		skeleton.RightKnee:     {X: 0.55, Y: 0.75, Confidence: 1},
		skeleton.LeftAnkle:     {X: 0.45, Y: 0.90, Confidence: 1},
		skeleton.RightAnkle:    {X: 0.55, Y: 0.90, Confidence: 1},
	})
}

func single(name skeleton.Name, x, y, conf float64) skeleton.Skeleton {
	return skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		name: {X: x, Y: y, Confidence: conf},
	})
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCompare_Identity(t *testing.T) {
	ref := standing()
	result := Compare(ref, ref, 50)

	if !floatEqual(result.Overall, 100) {
		t.Errorf("Overall = %f, want 100", result.Overall)
	}
	if !result.Matched {
		t.Error("expected identical skeletons to match")
	}
	for name, pct := range result.Keypoints {
		if !floatEqual(pct, 100) {
			t.Errorf("diagnostic for %s = %f, want 100", name, pct)
		}
	}
	if len(result.Angles) != len(skeleton.JointAngles) {
		t.Errorf("got %d angles, want %d", len(result.Angles), len(skeleton.JointAngles))
	}
}

func TestCompare_EmptyAndDisjoint(t *testing.T) {
	tests := []struct {
		name     string
		ref, det skeleton.Skeleton
	}{
		{"empty reference", skeleton.Skeleton{}, standing()},
		{"empty detected", standing(), skeleton.Skeleton{}},
		{"both empty", skeleton.Skeleton{}, skeleton.Skeleton{}},
		{"disjoint", single(skeleton.Nose, 0.5, 0.2, 1), single(skeleton.LeftKnee, 0.5, 0.2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compare(tt.ref, tt.det, 0)
			if result.Overall != 0 {
				t.Errorf("Overall = %f, want 0", result.Overall)
			}
			if len(result.Keypoints) != 0 {
				t.Errorf("expected no diagnostics, got %v", result.Keypoints)
			}
		})
	}
}

func TestCompare_PositionalFalloff(t *testing.T) {
	ref := single(skeleton.Nose, 0.5, 0.5, 1)

	tests := []struct {
		name       string
		dx         float64
		overall    float64
		diagnostic float64
	}{
		{"exact", 0, 100, 100},
		{"half aggregate distance", 0.15, 50, 25},
		{"beyond diagnostic distance", 0.25, 100 * (1 - 0.25/0.3), 0},
		{"beyond aggregate distance", 0.35, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := single(skeleton.Nose, 0.5+tt.dx, 0.5, 1)
			result := Compare(ref, det, 0)
			if !floatEqual(result.Overall, tt.overall) {
				t.Errorf("Overall = %f, want %f", result.Overall, tt.overall)
			}
			if !floatEqual(result.Keypoints[skeleton.Nose], tt.diagnostic) {
				t.Errorf("diagnostic = %f, want %f", result.Keypoints[skeleton.Nose], tt.diagnostic)
			}
		})
	}
}

func TestCompare_ConfidenceScaling(t *testing.T) {
	ref := single(skeleton.LeftHip, 0.5, 0.5, 1)

	full := Compare(ref, single(skeleton.LeftHip, 0.55, 0.5, 1.0), 0)
	half := Compare(ref, single(skeleton.LeftHip, 0.55, 0.5, 0.5), 0)

	if !floatEqual(half.Overall, full.Overall/2) {
		t.Errorf("halving confidence gave %f, want %f", half.Overall, full.Overall/2)
	}
	if !floatEqual(half.Keypoints[skeleton.LeftHip], full.Keypoints[skeleton.LeftHip]/2) {
		t.Errorf("halving confidence gave diagnostic %f, want %f",
			half.Keypoints[skeleton.LeftHip], full.Keypoints[skeleton.LeftHip]/2)
	}
}

func TestCompare_MissingKeypointCountsAgainst(t *testing.T) {
	ref := skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		skeleton.Nose:    {X: 0.5, Y: 0.2, Confidence: 1},
		skeleton.LeftHip: {X: 0.45, Y: 0.6, Confidence: 1},
	})
	det := single(skeleton.Nose, 0.5, 0.2, 1)

	result := Compare(ref, det, 0)

	want := 100 * 0.5 / (0.5 + 1.2)
	if !floatEqual(result.Overall, want) {
		t.Errorf("Overall = %f, want %f", result.Overall, want)
	}
	pct, ok := result.Keypoints[skeleton.LeftHip]
	if !ok {
		t.Fatal("expected a diagnostic entry for the missing keypoint")
	}
	if pct != 0 {
		t.Errorf("missing keypoint diagnostic = %f, want 0", pct)
	}

	for _, dx := range []float64{0.05, 0.1, 0.2, 0.29} {
		hip, _ := ref.Get(skeleton.LeftHip)
		hip.X += dx
		present := Compare(ref, det.With(skeleton.LeftHip, hip), 0)
		if present.Overall <= result.Overall {
			t.Errorf("hip %.2f away scored %f, want more than missing hip %f", dx, present.Overall, result.Overall)
		}
	}
}

func TestCompare_ExtraDetectedKeypointsIgnored(t *testing.T) {
	ref := single(skeleton.Nose, 0.5, 0.2, 1)
	det := standing()

	result := Compare(ref, det, 0)

	if !floatEqual(result.Overall, 100) {
		t.Errorf("Overall = %f, want 100", result.Overall)
	}
	if len(result.Keypoints) != 1 {
		t.Errorf("got %d diagnostics, want 1", len(result.Keypoints))
	}
}

func TestCompare_MonotonicInDisplacement(t *testing.T) {
	ref := standing()
	prev, prevKnee := 101.0, 101.0

	for step := 0; step <= 10; step++ {
		det := testsupport.Shift(ref, skeleton.RightKnee, float64(step)*0.04, 0)
		result := Compare(ref, det, 0)
		if result.Overall > prev+1e-9 {
			t.Fatalf("score increased from %f to %f at step %d", prev, result.Overall, step)
		}
		knee := result.Keypoints[skeleton.RightKnee]
		if knee > prevKnee+1e-9 {
			t.Fatalf("rightKnee diagnostic increased from %f to %f at step %d", prevKnee, knee, step)
		}
		prev, prevKnee = result.Overall, knee
	}
}

func TestCompare_HugeCoordinates(t *testing.T) {
	ref := standing()
	det := ref.
		With(skeleton.RightShoulder, skeleton.Keypoint{X: 1e200, Y: 1e200, Confidence: 1}).
		With(skeleton.RightWrist, skeleton.Keypoint{X: -1e200, Y: -1e200, Confidence: 1}).
		With(skeleton.LeftAnkle, skeleton.Keypoint{X: math.MaxFloat64, Y: 0.9, Confidence: 1}).
		With(skeleton.LeftHip, skeleton.Keypoint{X: -math.MaxFloat64, Y: 0.6, Confidence: 1})

	result := Compare(ref, det, 50)

	if math.IsNaN(result.Overall) || result.Overall < 0 || result.Overall > 100 {
		t.Fatalf("Overall = %f, want a value in [0,100]", result.Overall)
	}
	for name, sim := range result.Angles {
		if math.IsNaN(sim) || sim < 0 || sim > 1 {
			t.Errorf("angle %s = %f, want a value in [0,1]", name, sim)
		}
	}
	if _, err := json.Marshal(result); err != nil {
		t.Errorf("result does not encode: %v", err)
	}
}

func TestCompare_DegenerateAngle(t *testing.T) {
	ref := standing()
	elbow, _ := ref.Get(skeleton.RightElbow)
	det := ref.With(skeleton.RightWrist, elbow)

	result := Compare(ref, det, 0)

	if math.IsNaN(result.Overall) {
		t.Fatal("Overall is NaN")
	}
	if _, ok := result.Angles["rightArm"]; ok {
		t.Error("expected rightArm angle to be skipped for a zero-length segment")
	}
	if _, ok := result.Angles["leftArm"]; !ok {
		t.Error("expected leftArm angle to be present")
	}
}

func TestCompare_MalformedInput(t *testing.T) {
	ref := standing()
	det := ref.
		With(skeleton.Nose, skeleton.Keypoint{X: math.NaN(), Y: 0.2, Confidence: 1}).
		With(skeleton.LeftHip, skeleton.Keypoint{X: 0.45, Y: 0.6, Confidence: 7})

	result := Compare(ref, det, 0)

	if math.IsNaN(result.Overall) || result.Overall < 0 || result.Overall > 100 {
		t.Fatalf("Overall = %f, want a value in [0,100]", result.Overall)
	}
	if result.Keypoints[skeleton.Nose] != 0 {
		t.Errorf("non-finite keypoint diagnostic = %f, want 0", result.Keypoints[skeleton.Nose])
	}
	if result.Keypoints[skeleton.LeftHip] > 100 {
		t.Errorf("diagnostic exceeded 100: %f", result.Keypoints[skeleton.LeftHip])
	}
}

func TestCompare_SyntheticAccuracy(t *testing.T) {
	ref := standing()
	rng := testsupport.NewRand(42)

	if got := Score(ref, testsupport.Perturb(ref, 100, rng)); !floatEqual(got, 100) {
		t.Errorf("perfect synthetic detection scored %f, want 100", got)
	}

	const trials = 50
	mean := func(accuracy float64) float64 {
		var sum float64
		for i := 0; i < trials; i++ {
			score := Score(ref, testsupport.Perturb(ref, accuracy, rng))
			if score < 0 || score > 100 {
				t.Fatalf("score %f out of range at accuracy %f", score, accuracy)
			}
			sum += score
		}
		return sum / trials
	}

	high, mid, low := mean(90), mean(60), mean(20)
	if !(high > mid && mid > low) {
		t.Errorf("expected mean scores to fall with accuracy, got 90:%f 60:%f 20:%f", high, mid, low)
	}
}

func TestCompare_Threshold(t *testing.T) {
	ref := single(skeleton.Nose, 0.5, 0.5, 1)
	det := single(skeleton.Nose, 0.5, 0.5, 0.5)

	if !Compare(ref, det, 50).Matched {
		t.Error("expected score of 50 to match threshold 50")
	}
	if Compare(ref, det, 51).Matched {
		t.Error("expected score of 50 not to match threshold 51")
	}
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	ref := standing()
	det := testsupport.Shift(ref, skeleton.LeftKnee, 0.1, 0)
	before := det.Points()

	_ = Compare(ref, det, 0)

	for name, kp := range det.Points() {
		if before[name] != kp {
			t.Errorf("keypoint %s changed from %v to %v", name, before[name], kp)
		}
	}
}
