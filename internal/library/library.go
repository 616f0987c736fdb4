// Package library holds the built-in pose catalog: descriptive metadata,
// adjustment hints and default reference skeletons.
package library

import (
	"sort"

	"github.com/ayusman/asana/internal/skeleton"
)

// Difficulty bounds.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// fallbackHint is used when a pose has no hints at all.
const fallbackHint = "Focus on your form"

// Pose describes one catalog entry.
type Pose struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	SanskritName string                     `json:"sanskrit_name"`
	Difficulty   int                        `json:"difficulty"`
	Category     string                     `json:"category"`
	Description  string                     `json:"description"`
	Adjustments  []string                   `json:"adjustments"`
	Hints        map[skeleton.Name][]string `json:"hints,omitempty"`
	Reference    skeleton.Skeleton          `json:"reference"`
}

// Hint returns the first keypoint-specific hint for name, falling back to the
// pose's first general adjustment.
func (p Pose) Hint(name skeleton.Name) string {
	if hints := p.Hints[name]; len(hints) > 0 {
		return hints[0]
	}
	if len(p.Adjustments) > 0 {
		return p.Adjustments[0]
	}
	return fallbackHint
}

// Slot is one position in the training sequence.
type Slot struct {
	PoseID string `json:"pose_id" toml:"pose"`
	Active bool   `json:"active" toml:"active"`
}

// DefaultSlots is the six-slot sequence used when nothing is configured.
func DefaultSlots() []Slot {
	return []Slot{
		{PoseID: "mountain", Active: true},
		{PoseID: "warrior2", Active: true},
		{PoseID: "tree", Active: true},
		{PoseID: "downdog", Active: true},
		{PoseID: "chair", Active: false},
		{PoseID: "triangle", Active: false},
	}
}

// Catalog returns every built-in pose sorted by difficulty then name.
func Catalog() []Pose {
	poses := make([]Pose, 0, len(catalog))
	for _, p := range catalog {
		poses = append(poses, p)
	}
	sort.Slice(poses, func(i, j int) bool {
		if poses[i].Difficulty != poses[j].Difficulty {
			return poses[i].Difficulty < poses[j].Difficulty
		}
		return poses[i].Name < poses[j].Name
	})
	return poses
}

// Lookup returns the built-in pose with the given ID.
func Lookup(id string) (Pose, bool) {
	p, ok := catalog[id]
	return p, ok
}

// ClampDifficulty limits d to [MinDifficulty, MaxDifficulty].
func ClampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

var catalog = func() map[string]Pose {
	m := make(map[string]Pose, len(builtin))
	for _, p := range builtin {
		p.Difficulty = ClampDifficulty(p.Difficulty)
		if p.Reference.Empty() {
			p.Reference = genericReference()
		}
		m[p.ID] = p
	}
	return m
}()
