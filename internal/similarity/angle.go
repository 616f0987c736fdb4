package similarity

import (
	"math"

	"github.com/ayusman/asana/internal/skeleton"
)

// minSegment is the shortest limb segment for which an angle is defined.
const minSegment = 1e-9

// AngleAt returns the angle in degrees, within [0,180], formed at b by the
// segments b->a and b->c. It reports false when either segment has zero
// length or a length too large to represent, in which case the angle is
// undefined.
func AngleAt(a, b, c skeleton.Keypoint) (float64, bool) {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	m1 := math.Hypot(v1x, v1y)
	m2 := math.Hypot(v2x, v2y)
	if m1 < minSegment || m2 < minSegment || math.IsInf(m1, 0) || math.IsInf(m2, 0) {
		return 0, false
	}

	// Normalize first so the products stay in range for huge coordinates.
	cos := (v1x/m1)*(v2x/m2) + (v1y/m1)*(v2y/m2)
	if math.IsNaN(cos) {
		return 0, false
	}
	return math.Acos(clamp(cos, -1, 1)) * 180 / math.Pi, true
}

// AngleSimilarity returns a similarity in [0,1] between two angles in
// degrees. Differences wrap around so 170 and -170 are 20 degrees apart.
func AngleSimilarity(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return math.Max(0, 1-diff/AngleFalloff)
}

func jointAngle(s skeleton.Skeleton, joint skeleton.JointAngle) (float64, bool) {
	a, ok := s.Get(joint.Proximal)
	if !ok {
		return 0, false
	}
	b, ok := s.Get(joint.Middle)
	if !ok {
		return 0, false
	}
	c, ok := s.Get(joint.Distal)
	if !ok {
		return 0, false
	}
	return AngleAt(a, b, c)
}
