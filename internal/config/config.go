package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/asana/internal/library"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener configuration.
type Server struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

// Paths contains storage locations.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	PluginDir string `toml:"plugin_dir"` // Default: <data_dir>/plugins
}

// Camera contains capture and motion-gate settings.
type Camera struct {
	Enabled         bool    `toml:"enabled"`
	Device          int     `toml:"device"`
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	ActiveFPS       int     `toml:"active_fps"`
	IdleFPS         int     `toml:"idle_fps"`
	IdleTimeoutMS   int     `toml:"idle_timeout_ms"`
	MotionThreshold float64 `toml:"motion_threshold"`
}

// IdleTimeout returns the motion-free period after which capture slows down.
func (c Camera) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMS) * time.Millisecond
}

// Detector contains pose-estimation settings.
type Detector struct {
	// MinConfidence drops detected keypoints below this confidence.
	MinConfidence float64 `toml:"min_confidence"`
	// Script overrides the location of the pose service script.
	Script string `toml:"script"`
}

// Training contains scoring and hold-tracking settings.
type Training struct {
	DetectionThreshold float64        `toml:"detection_threshold"`
	HoldSeconds        int            `toml:"hold_seconds"`
	AutoProgression    bool           `toml:"auto_progression"`
	MaxSuggestions     int            `toml:"max_suggestions"`
	Slots              []library.Slot `toml:"slots"`
}

// RequiredHold returns HoldSeconds as a duration.
func (t Training) RequiredHold() time.Duration {
	return time.Duration(t.HoldSeconds) * time.Second
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"` // console, json or auto
	Level  string `toml:"level"`
}

// Events contains external event publishing settings. Publishing is
// disabled when no brokers are configured.
type Events struct {
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`
	// IncludeFrames also publishes per-frame score events.
	IncludeFrames bool `toml:"include_frames"`
}

// Config encapsulates all configuration values for asana.
type Config struct {
	Server   Server   `toml:"server"`
	Paths    Paths    `toml:"paths"`
	Camera   Camera   `toml:"camera"`
	Detector Detector `toml:"detector"`
	Training Training `toml:"training"`
	Logging  Logging  `toml:"logging"`
	Events   Events   `toml:"events"`
}

// Load parses and validates the configuration file at path, or the default
// location when path is empty. A missing file yields the defaults. It
// returns the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Slots from the file replace the defaults rather than merging.
		cfg.Training.Slots = nil
		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Training.Slots) == 0 {
			cfg.Training.Slots = library.DefaultSlots()
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
