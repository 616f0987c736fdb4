// Package session accumulates statistics for one training session.
package session

import (
	"math"
	"sort"
	"time"
)

// PoseStats aggregates the frames scored against one pose.
type PoseStats struct {
	PoseID          string  `json:"pose_id"`
	Frames          int     `json:"frames"`
	AverageAccuracy float64 `json:"average_accuracy"`
	BestAccuracy    float64 `json:"best_accuracy"`
	Completions     int     `json:"completions"`
}

// Summary is an immutable view of a session.
type Summary struct {
	ID              string      `json:"id"`
	StartedAt       time.Time   `json:"started_at"`
	EndedAt         time.Time   `json:"ended_at,omitempty"`
	Frames          int         `json:"frames"`
	AverageAccuracy float64     `json:"average_accuracy"`
	Completions     int         `json:"completions"`
	BestPose        string      `json:"best_pose,omitempty"`
	Poses           []PoseStats `json:"poses"`
}

// Duration returns how long the session ran, or zero while it is open.
func (s Summary) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Session records per-frame accuracy and completed holds. It is not safe for
// concurrent use.
type Session struct {
	id        string
	startedAt time.Time
	endedAt   time.Time

	frames      int
	average     float64
	completions int
	poses       map[string]*PoseStats
}

// New starts a session.
func New(id string, startedAt time.Time) *Session {
	return &Session{
		id:        id,
		startedAt: startedAt,
		poses:     make(map[string]*PoseStats),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Record adds one scored frame for poseID. Non-finite accuracies are ignored.
func (s *Session) Record(poseID string, accuracy float64) {
	if math.IsNaN(accuracy) || math.IsInf(accuracy, 0) {
		return
	}

	s.average = RunningAverage(s.average, s.frames, accuracy)
	s.frames++

	p := s.pose(poseID)
	p.AverageAccuracy = RunningAverage(p.AverageAccuracy, p.Frames, accuracy)
	p.Frames++
	if accuracy > p.BestAccuracy {
		p.BestAccuracy = accuracy
	}
}

// RecordCompletion counts a completed hold of poseID.
func (s *Session) RecordCompletion(poseID string) {
	s.completions++
	s.pose(poseID).Completions++
}

// End closes the session at t.
func (s *Session) End(t time.Time) {
	if s.endedAt.IsZero() {
		s.endedAt = t
	}
}

// Ended reports whether End has been called.
func (s *Session) Ended() bool {
	return !s.endedAt.IsZero()
}

// BestPose returns the pose with the highest average accuracy. Ties go to
// the lexically smaller pose ID.
func (s *Session) BestPose() (string, float64) {
	var (
		best  string
		score = -1.0
	)
	for id, p := range s.poses {
		if p.Frames == 0 {
			continue
		}
		if p.AverageAccuracy > score || (p.AverageAccuracy == score && id < best) {
			best, score = id, p.AverageAccuracy
		}
	}
	if best == "" {
		return "", 0
	}
	return best, score
}

// Summary returns a snapshot of the session.
func (s *Session) Summary() Summary {
	best, _ := s.BestPose()
	sum := Summary{
		ID:              s.id,
		StartedAt:       s.startedAt,
		EndedAt:         s.endedAt,
		Frames:          s.frames,
		AverageAccuracy: s.average,
		Completions:     s.completions,
		BestPose:        best,
		Poses:           make([]PoseStats, 0, len(s.poses)),
	}
	for _, p := range s.poses {
		sum.Poses = append(sum.Poses, *p)
	}
	sort.Slice(sum.Poses, func(i, j int) bool {
		return sum.Poses[i].PoseID < sum.Poses[j].PoseID
	})
	return sum
}

func (s *Session) pose(id string) *PoseStats {
	p, ok := s.poses[id]
	if !ok {
		p = &PoseStats{PoseID: id}
		s.poses[id] = p
	}
	return p
}

// RunningAverage folds v into an average over n previous values.
func RunningAverage(avg float64, n int, v float64) float64 {
	if n <= 0 {
		return v
	}
	return (avg*float64(n) + v) / float64(n+1)
}
