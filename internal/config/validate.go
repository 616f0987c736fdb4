package config

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSlots is the largest supported pose sequence.
const MaxSlots = 6

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateEvents()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	return nil
}

func (c *Config) validateCamera() error {
	if !c.Camera.Enabled {
		return nil
	}
	if c.Camera.Device < 0 {
		return errors.New("camera.device must be zero or positive")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be positive")
	}
	if c.Camera.ActiveFPS < 1 || c.Camera.ActiveFPS > 60 {
		return errors.New("camera.active_fps must be between 1 and 60")
	}
	if c.Camera.IdleFPS < 1 || c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return errors.New("camera.idle_fps must be between 1 and camera.active_fps")
	}
	if c.Camera.IdleTimeoutMS < 0 {
		return errors.New("camera.idle_timeout_ms must be zero or positive")
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 1 {
		return errors.New("camera.motion_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateTraining() error {
	t := c.Training
	if t.DetectionThreshold < 0 || t.DetectionThreshold > 100 {
		return errors.New("training.detection_threshold must be between 0 and 100")
	}
	if t.HoldSeconds <= 0 {
		return errors.New("training.hold_seconds must be positive")
	}
	if t.MaxSuggestions < 1 {
		return errors.New("training.max_suggestions must be at least 1")
	}
	if len(t.Slots) == 0 || len(t.Slots) > MaxSlots {
		return fmt.Errorf("training.slots must contain between 1 and %d entries", MaxSlots)
	}

	active := 0
	for i, slot := range t.Slots {
		if slot.PoseID == "" {
			return fmt.Errorf("training.slots[%d].pose must be set", i)
		}
		if slot.Active {
			active++
		}
	}
	if active == 0 {
		return errors.New("training.slots must have at least one active entry")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format %q must be console, json or auto", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if len(c.Events.KafkaBrokers) > 0 && c.Events.KafkaTopic == "" {
		return errors.New("events.kafka_topic must be set when events.kafka_brokers is set")
	}
	return nil
}
