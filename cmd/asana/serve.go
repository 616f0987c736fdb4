package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ayusman/asana/internal/app"
	"github.com/ayusman/asana/internal/capture"
	"github.com/ayusman/asana/internal/config"
	"github.com/ayusman/asana/internal/detector"
	"github.com/ayusman/asana/internal/events"
	"github.com/ayusman/asana/internal/plugin"
	"github.com/ayusman/asana/internal/server"
	"github.com/ayusman/asana/internal/tray"
)

// errAlreadyRunning is returned when another instance holds the data-dir lock.
var errAlreadyRunning = errors.New("another asana instance is already running")

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var noCamera bool
	var withTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the training server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if noCamera {
				cfg.Camera.Enabled = false
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errAlreadyRunning
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release lock", "error", err)
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(runCtx, stop, ctx, cfg, logger, withTray)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noCamera, "no-camera", false, "Serve the API without camera capture")
	cmd.Flags().BoolVar(&withTray, "tray", false, "Show a system tray menu")
	return cmd
}

func serve(ctx context.Context, cancel context.CancelFunc, cc *commandContext, cfg *config.Config, logger *slog.Logger, withTray bool) error {
	st, err := cc.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.Paths.PluginDir, logger)
	if err := plugins.Discover(); err != nil {
		logger.Warn("plugin discovery failed", "dir", cfg.Paths.PluginDir, "error", err)
	}
	logger.Info("plugins loaded", "count", len(plugins.List()), "dir", cfg.Paths.PluginDir)

	hub := server.NewEventHub(logger)
	dispatcher := plugin.NewDispatcher(st.Cues(), plugins, plugin.NewExecutor(plugin.DefaultTimeout), 4, logger)
	defer dispatcher.Wait()

	sinks := events.NewFanout(logger)
	sinks.Add("websocket", hub)
	sinks.Add("plugins", dispatcher)
	if len(cfg.Events.KafkaBrokers) > 0 {
		kafka := events.NewKafkaSink(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, logger)
		kafka.IncludeFrames = cfg.Events.IncludeFrames
		defer kafka.Close()
		sinks.Add("kafka", kafka)
		logger.Info("publishing events to kafka", "brokers", strings.Join(cfg.Events.KafkaBrokers, ","), "topic", cfg.Events.KafkaTopic)
	}

	var tr *tray.Tray
	if withTray {
		tr = tray.New()
		sinks.Add("tray", tr)
	}

	appCfg := app.Config{
		Store:  st,
		Sink:   sinks,
		Logger: logger,
		Slots:  cfg.Training.Slots,
		Settings: app.Settings{
			Threshold:       cfg.Training.DetectionThreshold,
			HoldSeconds:     cfg.Training.HoldSeconds,
			AutoProgression: cfg.Training.AutoProgression,
			MaxSuggestions:  cfg.Training.MaxSuggestions,
		},
		MotionThreshold: cfg.Camera.MotionThreshold,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		IdleFPS:         cfg.Camera.IdleFPS,
		IdleTimeout:     cfg.Camera.IdleTimeout(),
	}
	if cfg.Camera.Enabled {
		det, err := detector.NewMediaPipeDetector(detector.Config{
			MinConfidence: cfg.Detector.MinConfidence,
			Script:        cfg.Detector.Script,
		})
		if err != nil {
			logger.Warn("pose detector unavailable, camera disabled", "error", err)
		} else {
			appCfg.Detector = det
			appCfg.Camera = capture.NewCamera(capture.Options{
				Device: cfg.Camera.Device,
				Width:  cfg.Camera.Width,
				Height: cfg.Camera.Height,
				FPS:    cfg.Camera.ActiveFPS,
			})
		}
	}

	a, err := app.New(appCfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		// ctx is already cancelled here; the final save must still run.
		if err := a.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()
	if appCfg.Camera != nil {
		if err := a.Start(ctx); err != nil {
			logger.Warn("camera capture failed to start", "error", err)
		}
	}

	srv := server.New(server.Config{
		StaticDir: findWebDir(cfg.Server.StaticDir, cfg.Paths.DataDir),
		Store:     st,
		App:       a,
		Hub:       hub,
		Plugins:   plugins,
		Logger:    logger,
	})

	if tr == nil {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
	}()

	tr.OnToggle(func(training bool) {
		var err error
		if training {
			_, err = a.StartSession(ctx)
		} else {
			_, err = a.StopSession(ctx)
		}
		if err != nil {
			logger.Warn("tray toggle failed", "training", training, "error", err)
		}
	})
	tr.OnSettings(func() {
		if err := openBrowser("http://" + browserAddr(cfg.Server.Addr)); err != nil {
			logger.Warn("failed to open browser", "error", err)
		}
	})
	tr.OnQuit(cancel)

	go func() {
		<-ctx.Done()
		tr.Quit()
	}()
	tr.Run()

	cancel()
	return <-errCh
}

// findWebDir returns dir when it exists, else the web directory inside the
// data dir, else "".
func findWebDir(dir, dataDir string) string {
	candidates := []string{dir}
	if dataDir != "" {
		candidates = append(candidates, filepath.Join(dataDir, "web"))
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}

func browserAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
