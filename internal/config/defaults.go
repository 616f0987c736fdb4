package config

import (
	"time"

	"github.com/ayusman/asana/internal/library"
)

const (
	defaultAddr               = "127.0.0.1:8080"
	defaultStaticDir          = "web"
	defaultCameraDevice       = 0
	defaultCameraWidth        = 640
	defaultCameraHeight       = 480
	defaultActiveFPS          = 15
	defaultIdleFPS            = 2
	defaultIdleTimeout        = 2 * time.Second
	defaultMotionThreshold    = 0.02
	defaultMinConfidence      = 0.3
	defaultDetectionThreshold = 50.0
	defaultHoldSeconds        = 3
	defaultAutoProgression    = true
	defaultMaxSuggestions     = 3
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
	defaultKafkaTopic         = "asana.pose-events"
)

// Default returns a configuration populated with built-in defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      defaultAddr,
			StaticDir: defaultStaticDir,
		},
		Paths: Paths{
			DataDir:   DefaultDataDir(),
			PluginDir: "",
		},
		Camera: Camera{
			Enabled:         true,
			Device:          defaultCameraDevice,
			Width:           defaultCameraWidth,
			Height:          defaultCameraHeight,
			ActiveFPS:       defaultActiveFPS,
			IdleFPS:         defaultIdleFPS,
			IdleTimeoutMS:   int(defaultIdleTimeout / time.Millisecond),
			MotionThreshold: defaultMotionThreshold,
		},
		Detector: Detector{
			MinConfidence: defaultMinConfidence,
		},
		Training: Training{
			DetectionThreshold: defaultDetectionThreshold,
			HoldSeconds:        defaultHoldSeconds,
			AutoProgression:    defaultAutoProgression,
			MaxSuggestions:     defaultMaxSuggestions,
			Slots:              library.DefaultSlots(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Events: Events{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
