// Package events defines the notifications emitted while a training session
// runs and the sinks that deliver them.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/asana/internal/observability"
)

// Kind identifies an event type.
type Kind string

const (
	KindFrameScored    Kind = "frame.scored"
	KindHoldStarted    Kind = "hold.started"
	KindHoldLost       Kind = "hold.lost"
	KindPoseCompleted  Kind = "pose.completed"
	KindPoseAdvanced   Kind = "pose.advanced"
	KindAdvanceSkipped Kind = "pose.advance_skipped"
	KindPoseSelected   Kind = "pose.selected"
	KindSessionStarted Kind = "session.started"
	KindSessionEnded   Kind = "session.ended"
)

// Transitional reports whether k signals a state change rather than a
// per-frame update.
func (k Kind) Transitional() bool {
	return k != KindFrameScored
}

// Event is a single notification. Fields that do not apply to a kind are
// left at their zero value.
type Event struct {
	Kind             Kind      `json:"kind"`
	SessionID        string    `json:"session_id,omitempty"`
	Pose             int       `json:"pose"`
	PoseID           string    `json:"pose_id,omitempty"`
	PoseName         string    `json:"pose_name,omitempty"`
	Accuracy         float64   `json:"accuracy"`
	HoldPercentage   float64   `json:"hold_percentage"`
	RemainingSeconds float64   `json:"remaining_seconds"`
	Suggestions      []string  `json:"suggestions,omitempty"`
	Message          string    `json:"message,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Sink receives events.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, e Event) error {
	return f(ctx, e)
}

type namedSink struct {
	name string
	sink Sink
}

// Fanout delivers every event to all registered sinks. A failing sink does
// not prevent delivery to the others.
type Fanout struct {
	mu     sync.RWMutex
	sinks  []namedSink
	logger *slog.Logger
}

// NewFanout creates an empty Fanout.
func NewFanout(logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{logger: logger}
}

// Add registers sink under name. The name labels metrics and logs.
func (f *Fanout) Add(name string, sink Sink) {
	if sink == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sinks)
}

// Publish delivers e to every sink and returns the joined errors.
func (f *Fanout) Publish(ctx context.Context, e Event) error {
	f.mu.RLock()
	sinks := make([]namedSink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		err := s.sink.Publish(ctx, e)
		observability.RecordPublish(s.name, err)
		if err != nil {
			f.logger.Warn("event delivery failed", "sink", s.name, "kind", e.Kind, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder is an in-memory sink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends e.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
