package similarity

import (
	"fmt"
	"sort"

	"github.com/ayusman/asana/internal/skeleton"
)

const (
	// SuggestionThreshold is the diagnostic percentage below which a keypoint
	// needs correction.
	SuggestionThreshold = 70.0

	// DefaultMaxSuggestions is used when Suggest is called with k <= 0.
	DefaultMaxSuggestions = 3

	criticalBelow = 30.0
	majorBelow    = 50.0
)

// Severity grades how far a keypoint is from its reference position.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityMajor    Severity = "Major"
	SeverityMinor    Severity = "Minor"
)

// SeverityFor returns the severity for a diagnostic percentage below
// SuggestionThreshold.
func SeverityFor(score float64) Severity {
	switch {
	case score < criticalBelow:
		return SeverityCritical
	case score < majorBelow:
		return SeverityMajor
	default:
		return SeverityMinor
	}
}

// Fixed feedback lines.
const (
	MessageStartPosition = "Stand in the correct starting position to receive personalized feedback."
	MessageGreatForm     = "Great form! Try to hold the pose for a few breaths."
	MessageAlignment     = "Your alignment looks excellent! Focus on your breathing now."
)

// HintFunc returns a corrective hint for a keypoint of the pose being scored.
type HintFunc func(name skeleton.Name) string

// Suggestion is a corrective hint for one keypoint.
type Suggestion struct {
	Keypoint skeleton.Name `json:"keypoint"`
	Label    string        `json:"label"`
	Score    float64       `json:"score"`
	Severity Severity      `json:"severity"`
	Hint     string        `json:"hint"`
}

// String formats the suggestion as "[Severity] Label: hint".
func (s Suggestion) String() string {
	return fmt.Sprintf("[%s] %s: %s", s.Severity, s.Label, s.Hint)
}

// Feedback is the presentation-ready outcome of Suggest.
type Feedback struct {
	Suggestions []Suggestion `json:"suggestions"`
	Messages    []string     `json:"messages"`
}

// Suggest selects at most k of the lowest-scoring keypoints below
// SuggestionThreshold, lowest first, and attaches a hint from hint to each.
// Ties are broken by keypoint name. When no keypoint needs correction the
// feedback carries encouragement instead.
func Suggest(diagnostics map[skeleton.Name]float64, k int, hint HintFunc) Feedback {
	if len(diagnostics) == 0 {
		return Feedback{Messages: []string{MessageStartPosition}}
	}
	if k <= 0 {
		k = DefaultMaxSuggestions
	}

	var low []Suggestion
	for name, score := range diagnostics {
		if score >= SuggestionThreshold {
			continue
		}
		low = append(low, Suggestion{
			Keypoint: name,
			Label:    skeleton.FriendlyName(name),
			Score:    score,
			Severity: SeverityFor(score),
		})
	}

	if len(low) == 0 {
		return Feedback{Messages: []string{MessageGreatForm, MessageAlignment}}
	}

	sort.Slice(low, func(i, j int) bool {
		if low[i].Score != low[j].Score {
			return low[i].Score < low[j].Score
		}
		return low[i].Keypoint < low[j].Keypoint
	})
	if len(low) > k {
		low = low[:k]
	}

	fb := Feedback{Suggestions: low, Messages: make([]string, 0, len(low))}
	for i := range fb.Suggestions {
		if hint != nil {
			fb.Suggestions[i].Hint = hint(fb.Suggestions[i].Keypoint)
		}
		if fb.Suggestions[i].Hint == "" {
			fb.Suggestions[i].Hint = "Adjust your " + fb.Suggestions[i].Label
		}
		fb.Messages = append(fb.Messages, fb.Suggestions[i].String())
	}
	return fb
}
