package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ayusman/asana/internal/similarity"
)

// Keys under which settings are persisted.
const (
	settingThreshold       = "training.detection_threshold"
	settingHoldSeconds     = "training.hold_seconds"
	settingAutoProgression = "training.auto_progression"
	settingMaxSuggestions  = "training.max_suggestions"
)

// Settings are the training parameters that can change while the app runs.
type Settings struct {
	Threshold       float64 `json:"detection_threshold"`
	HoldSeconds     int     `json:"hold_seconds"`
	AutoProgression bool    `json:"auto_progression"`
	MaxSuggestions  int     `json:"max_suggestions"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Threshold:       50,
		HoldSeconds:     3,
		AutoProgression: true,
		MaxSuggestions:  similarity.DefaultMaxSuggestions,
	}
}

// RequiredHold returns HoldSeconds as a duration.
func (s Settings) RequiredHold() time.Duration {
	return time.Duration(s.HoldSeconds) * time.Second
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.Threshold < 0 || s.Threshold > 100 {
		return errors.New("detection_threshold must be between 0 and 100")
	}
	if s.HoldSeconds <= 0 {
		return errors.New("hold_seconds must be positive")
	}
	if s.MaxSuggestions < 1 {
		return errors.New("max_suggestions must be at least 1")
	}
	return nil
}

// Settings returns the current training settings.
func (a *App) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// UpdateSettings validates s, applies it to the tracker and persists it. A
// hold in progress is judged against the new values on the next frame.
func (a *App) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if a.store != nil {
		repo := a.store.Settings()
		values := map[string]string{
			settingThreshold:       strconv.FormatFloat(s.Threshold, 'f', -1, 64),
			settingHoldSeconds:     strconv.Itoa(s.HoldSeconds),
			settingAutoProgression: strconv.FormatBool(s.AutoProgression),
			settingMaxSuggestions:  strconv.Itoa(s.MaxSuggestions),
		}
		for key, value := range values {
			if err := repo.Set(key, value); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = s
	a.tracker.SetThreshold(s.Threshold)
	a.tracker.SetRequiredHold(s.RequiredHold())
	a.tracker.SetAutoProgression(s.AutoProgression)
	a.logger.Info("settings updated",
		"threshold", s.Threshold,
		"hold_seconds", s.HoldSeconds,
		"auto_progression", s.AutoProgression,
		"max_suggestions", s.MaxSuggestions,
	)
	return nil
}

// loadSettings overlays persisted settings onto the configured ones. Stored
// values that fail to parse or validate are ignored with a warning.
func (a *App) loadSettings() error {
	if a.store == nil {
		return nil
	}
	stored, err := a.store.Settings().All()
	if err != nil {
		return err
	}

	s := a.settings
	for key, value := range stored {
		var perr error
		switch key {
		case settingThreshold:
			var v float64
			if v, perr = strconv.ParseFloat(value, 64); perr == nil {
				s.Threshold = v
			}
		case settingHoldSeconds:
			var v int
			if v, perr = strconv.Atoi(value); perr == nil {
				s.HoldSeconds = v
			}
		case settingAutoProgression:
			var v bool
			if v, perr = strconv.ParseBool(value); perr == nil {
				s.AutoProgression = v
			}
		case settingMaxSuggestions:
			var v int
			if v, perr = strconv.Atoi(value); perr == nil {
				s.MaxSuggestions = v
			}
		}
		if perr != nil {
			a.logger.Warn("ignoring stored setting", "key", key, "value", value, "error", perr)
		}
	}
	if err := s.Validate(); err != nil {
		a.logger.Warn("ignoring stored settings", "error", err)
		return nil
	}
	a.settings = s
	return nil
}
