// Package app ties the scorer, the hold tracker, session statistics and
// event delivery into a training session, and optionally drives them from a
// camera.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ayusman/asana/internal/capture"
	"github.com/ayusman/asana/internal/detector"
	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/hold"
	"github.com/ayusman/asana/internal/library"
	"github.com/ayusman/asana/internal/session"
	"github.com/ayusman/asana/internal/similarity"
	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/store"
)

var (
	// ErrNotTraining is returned when a frame arrives outside a session.
	ErrNotTraining = errors.New("no training session in progress")
	// ErrUnknownPose is returned for a pose ID missing from the catalog.
	ErrUnknownPose = errors.New("unknown pose")
	// ErrNoCamera is returned by Start when no camera or detector is configured.
	ErrNoCamera = errors.New("camera capture is not configured")
)

// Config holds configuration options for the application.
type Config struct {
	// Store persists poses, slots, settings and sessions. Optional.
	Store *store.Store
	// Sink receives every event. Optional.
	Sink   events.Sink
	Logger *slog.Logger
	// Clock times holds and stamps events. Defaults to the system clock.
	Clock hold.Clock

	// Slots is the training sequence used when the store holds none.
	Slots    []library.Slot
	Settings Settings

	// Camera and Detector enable the capture loop started by Start.
	Camera          capture.Camera
	Detector        detector.Detector
	MotionThreshold float64
	ActiveFPS       int
	IdleFPS         int
	IdleTimeout     time.Duration
}

// App is the main application that orchestrates pose scoring, hold tracking
// and cue delivery.
type App struct {
	config  Config
	logger  *slog.Logger
	clock   hold.Clock
	sink    events.Sink
	store   *store.Store
	matcher *similarity.Matcher

	mu       sync.Mutex
	poses    map[string]library.Pose
	slots    []library.Slot
	settings Settings
	tracker  *hold.Tracker
	session  *session.Session
	last     FrameResult

	capture captureState
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New creates an App. Poses come from the store when one is configured and
// from the built-in catalog otherwise. Settings and slots saved in the store
// override the ones in config.
func New(config Config) (*App, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = systemClock{}
	}
	if config.Settings == (Settings{}) {
		config.Settings = DefaultSettings()
	}

	a := &App{
		config:   config,
		logger:   config.Logger,
		clock:    config.Clock,
		sink:     config.Sink,
		store:    config.Store,
		matcher:  similarity.NewMatcher(),
		poses:    make(map[string]library.Pose),
		settings: config.Settings,
	}

	if err := a.loadPoses(); err != nil {
		return nil, fmt.Errorf("load poses: %w", err)
	}
	if err := a.loadSettings(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	slots, err := a.loadSlots()
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	if err := a.resetTracker(slots); err != nil {
		return nil, err
	}

	return a, nil
}

// loadPoses fills the catalog and the matcher.
func (a *App) loadPoses() error {
	if a.store == nil {
		for _, p := range library.Catalog() {
			a.putPose(p)
		}
		return nil
	}

	stored, err := a.store.Poses().List()
	if err != nil {
		return err
	}
	for _, sp := range stored {
		p, err := a.poseFromStore(sp)
		if err != nil {
			return err
		}
		a.putPose(p)
	}
	a.logger.Debug("poses loaded", "count", len(a.poses))
	return nil
}

// poseFromStore merges a stored pose with the built-in hints for the same ID.
func (a *App) poseFromStore(sp *store.Pose) (library.Pose, error) {
	p, _ := library.Lookup(sp.ID)
	p.ID = sp.ID
	p.Name = sp.Name
	p.SanskritName = sp.SanskritName
	p.Category = sp.Category
	p.Difficulty = library.ClampDifficulty(sp.Difficulty)
	p.Description = sp.Description

	ref, err := a.store.Poses().Reference(sp.ID)
	if err != nil {
		return library.Pose{}, fmt.Errorf("reference for %s: %w", sp.ID, err)
	}
	if !ref.Empty() {
		p.Reference = ref
	}
	return p, nil
}

func (a *App) putPose(p library.Pose) {
	a.poses[p.ID] = p
	a.matcher.AddReference(&similarity.Reference{ID: p.ID, Name: p.Name, Skeleton: p.Reference})
}

func (a *App) loadSlots() ([]library.Slot, error) {
	slots := a.config.Slots
	if a.store != nil {
		stored, err := a.store.Slots().List()
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			slots = make([]library.Slot, len(stored))
			for i, s := range stored {
				slots[i] = library.Slot{PoseID: s.PoseID, Active: s.Active}
			}
		}
	}
	if len(slots) == 0 {
		slots = library.DefaultSlots()
	}
	return slots, nil
}

// resetTracker installs slots and a fresh tracker. Callers hold a.mu or own a
// not yet shared App.
func (a *App) resetTracker(slots []library.Slot) error {
	active := make([]bool, len(slots))
	for i, s := range slots {
		if _, ok := a.poses[s.PoseID]; !ok {
			return fmt.Errorf("slot %d: %w: %s", i, ErrUnknownPose, s.PoseID)
		}
		active[i] = s.Active
	}

	tracker, err := hold.New(hold.Config{
		Threshold:       a.settings.Threshold,
		RequiredHold:    a.settings.RequiredHold(),
		AutoProgression: a.settings.AutoProgression,
		Active:          active,
	}, hold.WithClock(a.clock), hold.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.slots = append([]library.Slot(nil), slots...)
	a.tracker = tracker
	return nil
}

// Matcher returns the matcher holding every pose reference.
func (a *App) Matcher() *similarity.Matcher {
	return a.matcher
}

// Pose returns the catalog entry for id.
func (a *App) Pose(id string) (library.Pose, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.poses[id]
	return p, ok
}

// Poses returns the catalog sorted by difficulty then name.
func (a *App) Poses() []library.Pose {
	a.mu.Lock()
	out := make([]library.Pose, 0, len(a.poses))
	for _, p := range a.poses {
		out = append(out, p)
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Difficulty != out[j].Difficulty {
			return out[i].Difficulty < out[j].Difficulty
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ReloadPose re-reads one pose and its reference from the store.
func (a *App) ReloadPose(id string) error {
	if a.store == nil {
		return nil
	}
	sp, err := a.store.Poses().GetByID(id)
	if err != nil {
		return err
	}
	p, err := a.poseFromStore(sp)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.putPose(p)
	return nil
}

// RemovePose drops a pose from the catalog. Poses used by a slot stay.
func (a *App) RemovePose(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.slots {
		if s.PoseID == id {
			return
		}
	}
	delete(a.poses, id)
	a.matcher.RemoveReference(id)
}

// Recognize ranks every reference against detected.
func (a *App) Recognize(detected skeleton.Skeleton, threshold float64) []similarity.Match {
	return a.matcher.Match(detected, threshold)
}
