package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/hold"
	"github.com/ayusman/asana/internal/library"
	"github.com/ayusman/asana/internal/observability"
	"github.com/ayusman/asana/internal/session"
	"github.com/ayusman/asana/internal/similarity"
	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/store"
)

// FrameResult is the outcome of scoring one detected skeleton.
type FrameResult struct {
	Pose      int                 `json:"pose"`
	PoseID    string              `json:"pose_id"`
	PoseName  string              `json:"pose_name"`
	Result    similarity.Result   `json:"result"`
	Feedback  similarity.Feedback `json:"feedback"`
	Update    hold.Update         `json:"update"`
	Timestamp time.Time           `json:"timestamp"`
}

// SlotStatus describes one entry of the training sequence.
type SlotStatus struct {
	Index    int    `json:"index"`
	PoseID   string `json:"pose_id"`
	PoseName string `json:"pose_name"`
	Active   bool   `json:"active"`
	Current  bool   `json:"current"`
}

// Status is a snapshot of the training state.
type Status struct {
	Training  bool         `json:"training"`
	SessionID string       `json:"session_id,omitempty"`
	PoseID    string       `json:"pose_id"`
	PoseName  string       `json:"pose_name"`
	Hold      hold.Status  `json:"hold"`
	Slots     []SlotStatus `json:"slots"`
	Settings  Settings     `json:"settings"`
	Last      *FrameResult `json:"last,omitempty"`
}

// SeedLibrary stores every built-in pose that is missing from s and, when s
// has no training sequence yet, saves slots as the sequence.
func SeedLibrary(s *store.Store, slots []library.Slot) error {
	for _, p := range library.Catalog() {
		_, err := s.Poses().EnsureBuiltin(&store.Pose{
			ID:           p.ID,
			Name:         p.Name,
			SanskritName: p.SanskritName,
			Category:     p.Category,
			Difficulty:   p.Difficulty,
			Description:  p.Description,
		}, p.Reference)
		if err != nil {
			return err
		}
	}

	existing, err := s.Slots().List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if len(slots) == 0 {
		slots = library.DefaultSlots()
	}
	rows := make([]store.Slot, len(slots))
	for i, slot := range slots {
		rows[i] = store.Slot{PoseID: slot.PoseID, Active: slot.Active}
	}
	return s.Slots().Replace(rows)
}

// IsTraining reports whether a session is in progress.
func (a *App) IsTraining() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// StartSession begins a training session on the current slot. It returns the
// session ID, or the ID of the session already in progress.
func (a *App) StartSession(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.session != nil {
		id := a.session.ID()
		a.mu.Unlock()
		return id, nil
	}

	now := a.clock.Now()
	s := session.New(uuid.NewString(), now)
	if a.store != nil {
		if err := a.store.Sessions().Save(s.Summary()); err != nil {
			a.mu.Unlock()
			return "", fmt.Errorf("save session: %w", err)
		}
	}
	a.session = s
	a.last = FrameResult{}
	_ = a.tracker.SetCurrentPose(a.tracker.CurrentPose())
	e := a.eventLocked(events.KindSessionStarted, now)
	a.mu.Unlock()

	observability.SetSessionActive(true)
	a.logger.Info("training session started", "session", s.ID())
	a.publish(ctx, e)
	return s.ID(), nil
}

// StopSession ends the session in progress, persists its statistics and
// returns its summary.
func (a *App) StopSession(ctx context.Context) (session.Summary, error) {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return session.Summary{}, ErrNotTraining
	}

	now := a.clock.Now()
	a.session.End(now)
	summary := a.session.Summary()
	e := a.eventLocked(events.KindSessionEnded, now)
	e.Accuracy = summary.AverageAccuracy
	a.session = nil
	_ = a.tracker.SetCurrentPose(a.tracker.CurrentPose())
	a.mu.Unlock()

	observability.SetSessionActive(false)
	observability.SetHoldProgress(0)
	a.logger.Info("training session ended",
		"session", summary.ID,
		"frames", summary.Frames,
		"average", summary.AverageAccuracy,
		"completions", summary.Completions,
	)

	var err error
	if a.store != nil {
		if serr := a.store.Sessions().Save(summary); serr != nil {
			err = errors.Join(err, fmt.Errorf("save session: %w", serr))
		}
		if perr := a.store.Performance().Record(summary.Poses); perr != nil {
			err = errors.Join(err, fmt.Errorf("record performance: %w", perr))
		}
	}
	a.publish(ctx, e)
	return summary, err
}

// Shutdown stops capture and ends the session in progress, if any, so its
// statistics are saved before the store closes.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Stop()
	if !a.IsTraining() {
		return err
	}
	if _, serr := a.StopSession(ctx); serr != nil && !errors.Is(serr, ErrNotTraining) {
		err = errors.Join(err, serr)
	}
	return err
}

// Summary returns a snapshot of the session in progress.
func (a *App) Summary() (session.Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return session.Summary{}, false
	}
	return a.session.Summary(), true
}

// ProcessSkeleton scores detected against the current pose, feeds the score
// to the hold tracker and publishes the resulting events. An empty skeleton
// counts as a frame with nobody in view: it can break a hold but is left out
// of the session statistics.
func (a *App) ProcessSkeleton(ctx context.Context, detected skeleton.Skeleton) (FrameResult, error) {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return FrameResult{}, ErrNotTraining
	}

	now := a.clock.Now()
	slot := a.tracker.CurrentPose()
	pose := a.poses[a.slots[slot].PoseID]

	start := time.Now()
	result := similarity.Compare(pose.Reference, detected, a.settings.Threshold)
	observability.RecordComparison(result.Overall, time.Since(start))

	feedback := similarity.Suggest(result.Keypoints, a.settings.MaxSuggestions, pose.Hint)
	update := a.tracker.Update(result.Overall)

	if detected.Empty() {
		observability.RecordFrame(observability.FrameNoPerson)
	} else {
		a.session.Record(pose.ID, result.Overall)
		observability.RecordFrame(observability.FrameScored)
	}
	if update.Transition != hold.TransitionNone {
		observability.RecordTransition(update.Transition.String())
	}
	if update.Transition == hold.TransitionCompleted {
		a.session.RecordCompletion(pose.ID)
		observability.RecordCompletion(pose.ID)
	}
	observability.SetHoldProgress(update.HoldPercentage)

	fr := FrameResult{
		Pose:      slot,
		PoseID:    pose.ID,
		PoseName:  pose.Name,
		Result:    result,
		Feedback:  feedback,
		Update:    update,
		Timestamp: now,
	}
	a.last = fr
	evs := a.frameEventsLocked(fr, now)
	a.mu.Unlock()

	for _, e := range evs {
		a.publish(ctx, e)
	}
	return fr, nil
}

// frameEventsLocked builds the events for one scored frame in the order they
// happened.
func (a *App) frameEventsLocked(fr FrameResult, now time.Time) []events.Event {
	u := fr.Update
	scored := events.Event{
		Kind:             events.KindFrameScored,
		SessionID:        a.session.ID(),
		Pose:             fr.Pose,
		PoseID:           fr.PoseID,
		PoseName:         fr.PoseName,
		Accuracy:         fr.Result.Overall,
		HoldPercentage:   u.HoldPercentage,
		RemainingSeconds: u.RemainingSeconds,
		Suggestions:      fr.Feedback.Messages,
		Timestamp:        now,
	}
	evs := []events.Event{scored}

	transition := scored
	transition.Suggestions = nil
	switch u.Transition {
	case hold.TransitionStarted:
		transition.Kind = events.KindHoldStarted
		evs = append(evs, transition)

	case hold.TransitionLost:
		transition.Kind = events.KindHoldLost
		if len(fr.Feedback.Suggestions) > 0 {
			transition.Message = fr.Feedback.Suggestions[0].String()
		}
		evs = append(evs, transition)

	case hold.TransitionCompleted:
		transition.Kind = events.KindPoseCompleted
		evs = append(evs, transition)

		switch {
		case u.Advanced:
			next := a.eventLocked(events.KindPoseAdvanced, now)
			next.Message = fmt.Sprintf("Next pose: %s", next.PoseName)
			evs = append(evs, next)
		case errors.Is(u.Notice, hold.ErrNoActivePose):
			skipped := a.eventLocked(events.KindAdvanceSkipped, now)
			skipped.Message = "Only one pose is active. Keep practicing this pose."
			evs = append(evs, skipped)
		}
	}
	return evs
}

// eventLocked returns an event of kind for the current slot.
func (a *App) eventLocked(kind events.Kind, now time.Time) events.Event {
	slot := a.tracker.CurrentPose()
	pose := a.poses[a.slots[slot].PoseID]
	e := events.Event{
		Kind:             kind,
		Pose:             slot,
		PoseID:           pose.ID,
		PoseName:         pose.Name,
		HoldPercentage:   a.tracker.HoldPercentage(),
		RemainingSeconds: a.tracker.RemainingHoldSeconds(),
		Timestamp:        now,
	}
	if a.session != nil {
		e.SessionID = a.session.ID()
	}
	return e
}

func (a *App) publish(ctx context.Context, e events.Event) {
	if a.sink == nil {
		return
	}
	if err := a.sink.Publish(ctx, e); err != nil {
		a.logger.Debug("event delivery failed", "kind", e.Kind, "error", err)
	}
}

// SelectPose makes slot i current and resets its hold.
func (a *App) SelectPose(ctx context.Context, i int) error {
	a.mu.Lock()
	if err := a.tracker.SetCurrentPose(i); err != nil {
		a.mu.Unlock()
		return err
	}
	e := a.eventLocked(events.KindPoseSelected, a.clock.Now())
	a.mu.Unlock()

	a.publish(ctx, e)
	return nil
}

// Advance moves to the next active slot. When no other slot is active the
// current slot is kept and hold.ErrNoActivePose is returned.
func (a *App) Advance(ctx context.Context) (int, error) {
	a.mu.Lock()
	next, err := a.tracker.Advance()
	kind := events.KindPoseAdvanced
	if err != nil {
		kind = events.KindAdvanceSkipped
	}
	e := a.eventLocked(kind, a.clock.Now())
	a.mu.Unlock()

	a.publish(ctx, e)
	return next, err
}

// SetSlotActive includes or excludes slot i from the sequence and persists
// the change.
func (a *App) SetSlotActive(i int, active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tracker.SetActive(i, active); err != nil {
		return err
	}
	a.slots[i].Active = active
	if a.store != nil {
		if err := a.store.Slots().SetActive(i, active); err != nil {
			return fmt.Errorf("save slot %d: %w", i, err)
		}
	}
	return nil
}

// ReplaceSlots installs a new training sequence. It is refused while a
// session is in progress.
func (a *App) ReplaceSlots(slots []library.Slot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return errors.New("cannot change the sequence during a session")
	}
	prev := a.slots
	if err := a.resetTracker(slots); err != nil {
		return err
	}
	if a.store != nil {
		rows := make([]store.Slot, len(slots))
		for i, s := range slots {
			rows[i] = store.Slot{PoseID: s.PoseID, Active: s.Active}
		}
		if err := a.store.Slots().Replace(rows); err != nil {
			if rerr := a.resetTracker(prev); rerr != nil {
				a.logger.Error("restore previous sequence", "error", rerr)
			}
			return fmt.Errorf("save slots: %w", err)
		}
	}
	return nil
}

// Slots returns the training sequence.
func (a *App) Slots() []library.Slot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]library.Slot(nil), a.slots...)
}

// Status returns a snapshot of the training state.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.tracker.CurrentPose()
	pose := a.poses[a.slots[current].PoseID]
	st := Status{
		Training: a.session != nil,
		PoseID:   pose.ID,
		PoseName: pose.Name,
		Hold:     a.tracker.Status(),
		Slots:    make([]SlotStatus, len(a.slots)),
		Settings: a.settings,
	}
	if a.session != nil {
		st.SessionID = a.session.ID()
		if !a.last.Timestamp.IsZero() {
			last := a.last
			st.Last = &last
		}
	}
	for i, s := range a.slots {
		st.Slots[i] = SlotStatus{
			Index:    i,
			PoseID:   s.PoseID,
			PoseName: a.poses[s.PoseID].Name,
			Active:   a.tracker.IsActive(i),
			Current:  i == current,
		}
	}
	return st
}
