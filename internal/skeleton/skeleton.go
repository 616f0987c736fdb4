// Package skeleton provides the keypoint vocabulary and the immutable skeleton type
// shared by the scorer, the hold tracker and the detectors.
//
// Coordinates are normalized to [0,1] with y growing downwards, in mirror
// view: a subject facing the camera has their left side at the smaller x.
package skeleton

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Name identifies a body keypoint.
type Name string

// Keypoint vocabulary. Left and right refer to the subject's own sides.
const (
	Nose          Name = "nose"
	LeftShoulder  Name = "leftShoulder"
	RightShoulder Name = "rightShoulder"
	LeftElbow     Name = "leftElbow"
	RightElbow    Name = "rightElbow"
	LeftWrist     Name = "leftWrist"
	RightWrist    Name = "rightWrist"
	LeftHip       Name = "leftHip"
	RightHip      Name = "rightHip"
	LeftKnee      Name = "leftKnee"
	RightKnee     Name = "rightKnee"
	LeftAnkle     Name = "leftAnkle"
	RightAnkle    Name = "rightAnkle"
)

// Vocabulary lists every known keypoint in head-to-foot order.
var Vocabulary = []Name{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

var vocabularyOrder = func() map[Name]int {
	m := make(map[Name]int, len(Vocabulary))
	for i, n := range Vocabulary {
		m[n] = i
	}
	return m
}()

// Known reports whether n is part of the fixed vocabulary.
func Known(n Name) bool {
	_, ok := vocabularyOrder[n]
	return ok
}

// Keypoint is a normalized image position with a detection confidence.
// X and Y are expected in [0,1]; Confidence in [0,1].
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether all fields are finite numbers.
func (k Keypoint) Valid() bool {
	return isFinite(k.X) && isFinite(k.Y) && isFinite(k.Confidence)
}

// Distance returns the Euclidean distance between two keypoints in normalized units.
func (k Keypoint) Distance(o Keypoint) float64 {
	dx := k.X - o.X
	dy := k.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Skeleton is an immutable mapping from keypoint name to keypoint. The zero
// value is an empty skeleton. A keypoint that was not detected is absent
// rather than stored with zero confidence.
type Skeleton struct {
	points map[Name]Keypoint
}

// New builds a skeleton from points. The map is copied so later changes to
// points do not affect the skeleton.
func New(points map[Name]Keypoint) Skeleton {
	if len(points) == 0 {
		return Skeleton{}
	}
	cp := make(map[Name]Keypoint, len(points))
	for n, kp := range points {
		cp[n] = kp
	}
	return Skeleton{points: cp}
}

// Get returns the keypoint for n and whether it is present.
func (s Skeleton) Get(n Name) (Keypoint, bool) {
	kp, ok := s.points[n]
	return kp, ok
}

// Has reports whether n is present.
func (s Skeleton) Has(n Name) bool {
	_, ok := s.points[n]
	return ok
}

// Len returns the number of present keypoints.
func (s Skeleton) Len() int {
	return len(s.points)
}

// Empty reports whether the skeleton has no keypoints.
func (s Skeleton) Empty() bool {
	return len(s.points) == 0
}

// Names returns the present keypoint names. Vocabulary names come first in
// head-to-foot order, followed by any unknown names sorted lexically.
func (s Skeleton) Names() []Name {
	names := make([]Name, 0, len(s.points))
	for n := range s.points {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, ki := vocabularyOrder[names[i]]
		oj, kj := vocabularyOrder[names[j]]
		switch {
		case ki && kj:
			return oi < oj
		case ki != kj:
			return ki
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// Points returns a copy of the underlying keypoint map.
func (s Skeleton) Points() map[Name]Keypoint {
	cp := make(map[Name]Keypoint, len(s.points))
	for n, kp := range s.points {
		cp[n] = kp
	}
	return cp
}

// With returns a new skeleton with n set to kp.
func (s Skeleton) With(n Name, kp Keypoint) Skeleton {
	cp := s.Points()
	cp[n] = kp
	return Skeleton{points: cp}
}

// Without returns a new skeleton with n removed.
func (s Skeleton) Without(n Name) Skeleton {
	if !s.Has(n) {
		return s
	}
	cp := s.Points()
	delete(cp, n)
	return New(cp)
}

// Shares reports whether both skeletons have at least one keypoint name in common.
func (s Skeleton) Shares(o Skeleton) bool {
	a, b := s.points, o.points
	if len(b) < len(a) {
		a, b = b, a
	}
	for n := range a {
		if _, ok := b[n]; ok {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the skeleton as an object keyed by keypoint name.
func (s Skeleton) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.points)
}

// UnmarshalJSON decodes an object keyed by keypoint name.
func (s *Skeleton) UnmarshalJSON(data []byte) error {
	var points map[Name]Keypoint
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("failed to decode skeleton: %w", err)
	}
	*s = New(points)
	return nil
}
