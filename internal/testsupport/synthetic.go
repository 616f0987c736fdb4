// Package testsupport generates synthetic detections from reference skeletons
// for tests. It is not used by production code paths.
package testsupport

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/asana/internal/skeleton"
)

// maxOffset is the coordinate offset applied at zero accuracy.
const maxOffset = 0.2

// NewRand returns a deterministic random source for reproducible tests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Perturb returns a detection of ref at the given accuracy percentage. Each
// coordinate is offset uniformly by up to (1-accuracy/100)*0.2 and clamped
// to [0,1]; confidences are scaled by accuracy/100.
func Perturb(ref skeleton.Skeleton, accuracy float64, rng *rand.Rand) skeleton.Skeleton {
	accuracy = math.Max(0, math.Min(100, accuracy))
	deviation := (1 - accuracy/100) * maxOffset

	points := make(map[skeleton.Name]skeleton.Keypoint, ref.Len())
	for _, name := range ref.Names() {
		kp, _ := ref.Get(name)
		points[name] = skeleton.Keypoint{
			X:          unit(kp.X + (rng.Float64()*2-1)*deviation),
			Y:          unit(kp.Y + (rng.Float64()*2-1)*deviation),
			Confidence: kp.Confidence * accuracy / 100,
		}
	}
	return skeleton.New(points)
}

// Shift returns ref with the named keypoint moved by (dx, dy).
func Shift(ref skeleton.Skeleton, name skeleton.Name, dx, dy float64) skeleton.Skeleton {
	kp, ok := ref.Get(name)
	if !ok {
		return ref
	}
	kp.X += dx
	kp.Y += dy
	return ref.With(name, kp)
}

// WithConfidence returns ref with every confidence set to c.
func WithConfidence(ref skeleton.Skeleton, c float64) skeleton.Skeleton {
	points := ref.Points()
	for name, kp := range points {
		kp.Confidence = c
		points[name] = kp
	}
	return skeleton.New(points)
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
