package similarity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/asana/internal/skeleton"
)

// ErrNoSamples is returned when training is attempted without samples.
var ErrNoSamples = errors.New("no samples provided")

// Sample is one recorded detection used to train a reference skeleton.
type Sample struct {
	Keypoints skeleton.Skeleton `json:"keypoints"`
	Timestamp int64             `json:"timestamp"`
}

// Trainer processes recorded samples into reference skeletons.
type Trainer struct {
	// MinPresence is the fraction of samples a keypoint must appear in to be
	// kept in the reference.
	MinPresence float64
}

// NewTrainer creates a Trainer that keeps keypoints seen in at least half of
// the samples.
func NewTrainer() *Trainer {
	return &Trainer{MinPresence: 0.5}
}

// Train parses raw samples and averages them into a reference skeleton.
func (t *Trainer) Train(samples []json.RawMessage) (skeleton.Skeleton, error) {
	if len(samples) == 0 {
		return skeleton.Skeleton{}, ErrNoSamples
	}

	parsed := make([]skeleton.Skeleton, 0, len(samples))
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return skeleton.Skeleton{}, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if sample.Keypoints.Empty() {
			return skeleton.Skeleton{}, fmt.Errorf("sample %d has no keypoints", i)
		}
		parsed = append(parsed, sample.Keypoints)
	}

	return t.Average(parsed)
}

// Average computes the per-keypoint mean position and confidence over the
// samples containing each keypoint.
func (t *Trainer) Average(samples []skeleton.Skeleton) (skeleton.Skeleton, error) {
	if len(samples) == 0 {
		return skeleton.Skeleton{}, ErrNoSamples
	}

	type sum struct {
		x, y, conf float64
		n          int
	}
	sums := make(map[skeleton.Name]*sum)

	for _, s := range samples {
		for name, kp := range s.Points() {
			if !kp.Valid() {
				continue
			}
			acc, ok := sums[name]
			if !ok {
				acc = &sum{}
				sums[name] = acc
			}
			acc.x += kp.X
			acc.y += kp.Y
			acc.conf += kp.Confidence
			acc.n++
		}
	}

	minCount := t.MinPresence * float64(len(samples))
	averaged := make(map[skeleton.Name]skeleton.Keypoint, len(sums))
	for name, acc := range sums {
		if float64(acc.n) < minCount {
			continue
		}
		n := float64(acc.n)
		averaged[name] = skeleton.Keypoint{
			X:          acc.x / n,
			Y:          acc.y / n,
			Confidence: clamp(acc.conf/n, 0, 1),
		}
	}

	if len(averaged) == 0 {
		return skeleton.Skeleton{}, fmt.Errorf("no keypoint present in enough of the %d samples", len(samples))
	}

	return skeleton.New(averaged), nil
}
