// Package similarity scores how closely a detected skeleton matches a reference
// skeleton and turns the per-keypoint diagnostics into corrective suggestions.
package similarity

import (
	"math"

	"github.com/ayusman/asana/internal/skeleton"
)

const (
	// AggregateMaxDistance is the distance at which a keypoint stops contributing
	// to the overall score.
	AggregateMaxDistance = 0.3

	// DiagnosticMaxDistance is the distance at which a keypoint's diagnostic
	// percentage reaches zero. It is stricter than the aggregate scale so that
	// feedback flags keypoints before they drag the overall score down.
	DiagnosticMaxDistance = 0.2

	// AngleWeight is the weight of every joint angle in the aggregate score.
	AngleWeight = 1.5

	// AngleFalloff is the angular difference in degrees at which angle
	// similarity reaches zero.
	AngleFalloff = 45.0
)

// Result is the outcome of comparing a detected skeleton against a reference.
type Result struct {
	// Overall is the weighted similarity in [0,100].
	Overall float64 `json:"overall"`
	// Matched reports whether Overall reached the threshold passed to Compare.
	Matched bool `json:"matched"`
	// Keypoints holds a diagnostic percentage in [0,100] for every reference
	// keypoint. Missing keypoints score 0.
	Keypoints map[skeleton.Name]float64 `json:"keypoints"`
	// Angles holds the similarity in [0,1] of every joint angle that could be
	// measured on both skeletons.
	Angles map[string]float64 `json:"angles,omitempty"`
}

// Compare scores detected against reference. It is a pure function: it never
// fails and never mutates its inputs. Detected keypoints with non-finite
// fields are treated as missing, confidences are clamped to [0,1].
//
// Empty skeletons, or skeletons with no keypoint name in common, produce an
// overall score of 0 with no diagnostics.
func Compare(reference, detected skeleton.Skeleton, threshold float64) Result {
	detected = sanitize(detected)

	result := Result{
		Keypoints: make(map[skeleton.Name]float64),
	}
	if reference.Empty() || detected.Empty() || !reference.Shares(detected) {
		return result
	}

	var total, possible float64

	for _, name := range reference.Names() {
		ref, _ := reference.Get(name)
		weight := skeleton.Weight(name)
		possible += weight

		det, ok := detected.Get(name)
		if !ok {
			result.Keypoints[name] = 0
			continue
		}

		d := ref.Distance(det)
		total += falloff(d, AggregateMaxDistance) * det.Confidence * weight
		result.Keypoints[name] = falloff(d, DiagnosticMaxDistance) * 100 * det.Confidence
	}

	for _, joint := range skeleton.JointAngles {
		refAngle, ok := jointAngle(reference, joint)
		if !ok {
			continue
		}
		detAngle, ok := jointAngle(detected, joint)
		if !ok {
			continue
		}

		sim := AngleSimilarity(refAngle, detAngle)
		if math.IsNaN(sim) || math.IsInf(sim, 0) {
			continue
		}
		if result.Angles == nil {
			result.Angles = make(map[string]float64)
		}
		result.Angles[joint.Name] = sim
		total += sim * AngleWeight
		possible += AngleWeight
	}

	if overall := 100 * total / possible; possible > 0 && !math.IsNaN(overall) {
		result.Overall = clamp(overall, 0, 100)
	}
	result.Matched = result.Overall >= threshold

	return result
}

// Score is shorthand for Compare(reference, detected, 0).Overall.
func Score(reference, detected skeleton.Skeleton) float64 {
	return Compare(reference, detected, 0).Overall
}

// falloff maps a distance to a linear similarity that is 1 at zero distance
// and 0 at or beyond limit.
func falloff(d, limit float64) float64 {
	return math.Max(0, 1-d/limit)
}

func sanitize(s skeleton.Skeleton) skeleton.Skeleton {
	dirty := false
	for _, name := range s.Names() {
		kp, _ := s.Get(name)
		if !kp.Valid() || kp.Confidence < 0 || kp.Confidence > 1 {
			dirty = true
			break
		}
	}
	if !dirty {
		return s
	}

	points := make(map[skeleton.Name]skeleton.Keypoint, s.Len())
	for name, kp := range s.Points() {
		if !kp.Valid() {
			continue
		}
		kp.Confidence = clamp(kp.Confidence, 0, 1)
		points[name] = kp
	}
	return skeleton.New(points)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
