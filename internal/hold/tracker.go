// Package hold tracks whether a practitioner is holding the current pose long
// enough to complete it, and advances through a cyclic sequence of pose slots.
package hold

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

var (
	// ErrPoseOutOfRange is returned for a slot index outside the sequence.
	ErrPoseOutOfRange = errors.New("pose index out of range")
	// ErrPoseInactive is returned when selecting a slot that is not active.
	ErrPoseInactive = errors.New("pose is not active")
	// ErrNoActivePose reports that an advance found no other active slot.
	ErrNoActivePose = errors.New("no other active pose")
)

// State is the hold state of the current pose.
type State int

const (
	NotHolding State = iota
	Holding
)

func (s State) String() string {
	switch s {
	case Holding:
		return "holding"
	default:
		return "not_holding"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "holding":
		*s = Holding
	case "not_holding":
		*s = NotHolding
	default:
		return fmt.Errorf("unknown hold state %q", text)
	}
	return nil
}

// Transition is the event produced by a single Update.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionStarted
	TransitionLost
	TransitionCompleted
)

func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionLost:
		return "lost"
	case TransitionCompleted:
		return "completed"
	default:
		return "none"
	}
}

// MarshalText encodes the transition by name.
func (t Transition) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a transition name.
func (t *Transition) UnmarshalText(text []byte) error {
	for _, c := range []Transition{TransitionNone, TransitionStarted, TransitionLost, TransitionCompleted} {
		if c.String() == string(text) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown transition %q", text)
}

// Clock supplies the current time. Durations are measured with Time.Sub, so
// the system clock's monotonic reading is used when available.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config configures a Tracker.
type Config struct {
	// Threshold is the accuracy percentage at or above which the pose counts
	// as held.
	Threshold float64
	// RequiredHold is how long the pose must be held. Zero or negative means
	// the hold completes as soon as it starts.
	RequiredHold time.Duration
	// AutoProgression moves to the next active slot when a hold completes.
	AutoProgression bool
	// Active marks which slots of the sequence take part.
	Active []bool
}

// Update reports the outcome of feeding one accuracy value to the tracker.
type Update struct {
	Transition Transition `json:"transition"`
	State      State      `json:"state"`
	// Pose is the current slot after the update.
	Pose int `json:"pose"`
	// Previous is the slot the transition refers to. It differs from Pose
	// only when the tracker advanced.
	Previous int  `json:"previous"`
	Advanced bool `json:"advanced"`
	// Notice carries a non-fatal condition such as ErrNoActivePose.
	Notice           error         `json:"-"`
	Elapsed          time.Duration `json:"elapsed"`
	HoldPercentage   float64       `json:"hold_percentage"`
	RemainingSeconds float64       `json:"remaining_seconds"`
}

// Status is a point-in-time view of the tracker.
type Status struct {
	State            State   `json:"state"`
	Pose             int     `json:"pose"`
	Active           []bool  `json:"active"`
	Threshold        float64 `json:"threshold"`
	RequiredSeconds  float64 `json:"required_seconds"`
	AutoProgression  bool    `json:"auto_progression"`
	HoldPercentage   float64 `json:"hold_percentage"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// Option configures optional Tracker behavior.
type Option func(*Tracker)

// WithClock sets the clock used to time holds.
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the logger used for transition diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracker is a two-state machine over the current pose slot. It is not safe
// for concurrent use.
type Tracker struct {
	threshold    float64
	requiredHold time.Duration
	autoProgress bool
	active       []bool

	current int
	state   State
	start   time.Time

	clock  Clock
	logger *slog.Logger
}

// New creates a Tracker positioned on the first active slot.
func New(cfg Config, opts ...Option) (*Tracker, error) {
	if len(cfg.Active) == 0 {
		return nil, fmt.Errorf("pose sequence is empty")
	}

	t := &Tracker{
		threshold:    cfg.Threshold,
		requiredHold: cfg.RequiredHold,
		autoProgress: cfg.AutoProgression,
		active:       append([]bool(nil), cfg.Active...),
		current:      -1,
		clock:        systemClock{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for i, on := range t.active {
		if on {
			t.current = i
			break
		}
	}
	if t.current < 0 {
		return nil, fmt.Errorf("at least one pose must be active")
	}

	return t, nil
}

// Update feeds the latest accuracy for the current pose. Accuracies below the
// threshold, including NaN, never count as holding.
func (t *Tracker) Update(accuracy float64) Update {
	now := t.clock.Now()
	u := Update{Pose: t.current, Previous: t.current}
	held := accuracy >= t.threshold

	switch t.state {
	case NotHolding:
		if !held {
			break
		}
		t.state = Holding
		t.start = now
		u.Transition = TransitionStarted
		t.logger.Debug("hold started", "pose", t.current, "accuracy", accuracy)
		if t.requiredHold <= 0 {
			t.complete(&u, 0)
			return u
		}

	case Holding:
		if !held {
			u.Elapsed = now.Sub(t.start)
			t.state = NotHolding
			t.start = time.Time{}
			u.Transition = TransitionLost
			t.logger.Debug("hold lost", "pose", t.current, "accuracy", accuracy, "elapsed", u.Elapsed)
			break
		}
		if elapsed := now.Sub(t.start); elapsed >= t.requiredHold {
			t.complete(&u, elapsed)
			return u
		}
	}

	u.State = t.state
	if t.state == Holding {
		u.Elapsed = t.elapsedAt(now)
	}
	u.HoldPercentage = t.percentageAt(now)
	u.RemainingSeconds = t.remainingAt(now)
	return u
}

func (t *Tracker) complete(u *Update, elapsed time.Duration) {
	u.Transition = TransitionCompleted
	u.Elapsed = elapsed
	u.HoldPercentage = 100
	u.RemainingSeconds = 0

	t.state = NotHolding
	t.start = time.Time{}
	t.logger.Info("pose completed", "pose", t.current, "elapsed", elapsed)

	if t.autoProgress {
		next, err := t.Advance()
		if err != nil {
			u.Notice = err
		} else {
			u.Advanced = true
			u.Pose = next
		}
	}
	u.State = t.state
}

// Advance moves to the next active slot in cyclic order, skipping inactive
// ones. When no other slot is active the tracker is unchanged and
// ErrNoActivePose is returned.
func (t *Tracker) Advance() (int, error) {
	n := len(t.active)
	for step := 1; step < n; step++ {
		next := (t.current + step) % n
		if !t.active[next] {
			continue
		}
		t.moveTo(next)
		t.logger.Info("advanced to next pose", "pose", next)
		return next, nil
	}

	t.logger.Warn("no other active pose to advance to", "pose", t.current)
	return t.current, ErrNoActivePose
}

// SetCurrentPose selects slot i and resets the hold. Selecting an inactive or
// out-of-range slot leaves the tracker unchanged and returns an error.
func (t *Tracker) SetCurrentPose(i int) error {
	if i < 0 || i >= len(t.active) {
		return fmt.Errorf("%w: %d", ErrPoseOutOfRange, i)
	}
	if !t.active[i] {
		t.logger.Warn("attempted to select inactive pose", "pose", i)
		return fmt.Errorf("%w: %d", ErrPoseInactive, i)
	}
	t.moveTo(i)
	return nil
}

func (t *Tracker) moveTo(i int) {
	t.current = i
	t.state = NotHolding
	t.start = time.Time{}
}

// SetActive marks slot i as active or inactive. Deactivating the current slot
// keeps it current until the tracker moves on.
func (t *Tracker) SetActive(i int, active bool) error {
	if i < 0 || i >= len(t.active) {
		return fmt.Errorf("%w: %d", ErrPoseOutOfRange, i)
	}
	t.active[i] = active
	return nil
}

// SetThreshold changes the accuracy threshold.
func (t *Tracker) SetThreshold(threshold float64) {
	t.threshold = threshold
}

// SetRequiredHold changes the required hold duration. A hold in progress is
// judged against the new duration on the next Update.
func (t *Tracker) SetRequiredHold(d time.Duration) {
	t.requiredHold = d
}

// SetAutoProgression toggles automatic advancement after completion.
func (t *Tracker) SetAutoProgression(on bool) {
	t.autoProgress = on
}

// CurrentPose returns the current slot index.
func (t *Tracker) CurrentPose() int {
	return t.current
}

// State returns the current hold state.
func (t *Tracker) State() State {
	return t.state
}

// Len returns the number of slots.
func (t *Tracker) Len() int {
	return len(t.active)
}

// IsActive reports whether slot i is active.
func (t *Tracker) IsActive(i int) bool {
	return i >= 0 && i < len(t.active) && t.active[i]
}

// RemainingHoldSeconds returns the seconds left in the current hold, or the
// full required duration when not holding.
func (t *Tracker) RemainingHoldSeconds() float64 {
	return t.remainingAt(t.clock.Now())
}

// HoldPercentage returns hold progress in [0,100], or 0 when not holding.
func (t *Tracker) HoldPercentage() float64 {
	return t.percentageAt(t.clock.Now())
}

// Status returns a snapshot of the tracker.
func (t *Tracker) Status() Status {
	now := t.clock.Now()
	return Status{
		State:            t.state,
		Pose:             t.current,
		Active:           append([]bool(nil), t.active...),
		Threshold:        t.threshold,
		RequiredSeconds:  t.requiredHold.Seconds(),
		AutoProgression:  t.autoProgress,
		HoldPercentage:   t.percentageAt(now),
		RemainingSeconds: t.remainingAt(now),
	}
}

func (t *Tracker) elapsedAt(now time.Time) time.Duration {
	if t.state != Holding {
		return 0
	}
	return now.Sub(t.start)
}

func (t *Tracker) remainingAt(now time.Time) float64 {
	required := math.Max(0, t.requiredHold.Seconds())
	if t.state != Holding {
		return required
	}
	return math.Max(0, required-t.elapsedAt(now).Seconds())
}

func (t *Tracker) percentageAt(now time.Time) float64 {
	if t.state != Holding {
		return 0
	}
	if t.requiredHold <= 0 {
		return 100
	}
	return math.Min(100, 100*t.elapsedAt(now).Seconds()/t.requiredHold.Seconds())
}
