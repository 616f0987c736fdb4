// Package tray provides a system tray interface for the asana pose trainer.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/asana/internal/events"
)

// Tray represents the system tray application. It is also an events.Sink so
// the menu follows the training session.
type Tray struct {
	onToggle   func(training bool)
	onSettings func()
	onQuit     func()

	mu       sync.RWMutex
	training bool
	pose     string
	progress float64

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuPose   *systray.MenuItem
	menuHold   *systray.MenuItem
}

// New creates a new Tray instance. Training starts stopped.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback called when training is started or stopped
// from the menu.
func (t *Tray) OnToggle(fn func(training bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Asana")
	systray.SetTooltip("Asana Pose Trainer")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.training), "Start or stop a training session")
	systray.AddSeparator()

	t.menuPose = systray.AddMenuItem(poseTitle(t.pose), "Current pose")
	t.menuPose.Disable()
	t.menuHold = systray.AddMenuItem(holdTitle(t.progress), "Hold progress")
	t.menuHold.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Asana")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	training := !t.training
	callback := t.onToggle
	t.mu.RUnlock()

	// The session events update the menu once the change took effect.
	if callback != nil {
		callback(training)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Publish implements events.Sink.
func (t *Tray) Publish(_ context.Context, e events.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case events.KindSessionStarted:
		t.training = true
	case events.KindSessionEnded:
		t.training = false
		t.progress = 0
	case events.KindFrameScored, events.KindHoldStarted, events.KindHoldLost:
		t.progress = e.HoldPercentage
	case events.KindPoseCompleted:
		t.progress = 100
	case events.KindPoseSelected, events.KindPoseAdvanced:
		t.progress = 0
	}
	if e.PoseName != "" {
		t.pose = e.PoseName
	}

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.training))
		t.menuPose.SetTitle(poseTitle(t.pose))
		t.menuHold.SetTitle(holdTitle(t.progress))
	}
	return nil
}

// IsTraining returns whether a session is in progress.
func (t *Tray) IsTraining() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.training
}

// CurrentPose returns the last pose name seen and its hold progress.
func (t *Tray) CurrentPose() (string, float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pose, t.progress
}

func toggleTitle(training bool) string {
	if training {
		return "● Training"
	}
	return "○ Stopped"
}

func poseTitle(name string) string {
	if name == "" {
		return "Pose: none"
	}
	return "Pose: " + name
}

func holdTitle(pct float64) string {
	return fmt.Sprintf("Hold: %.0f%%", pct)
}

// Quit closes the tray, ending Run.
func (t *Tray) Quit() {
	systray.Quit()
}
