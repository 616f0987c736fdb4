package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/asana/internal/capture"
	"github.com/ayusman/asana/internal/observability"
)

// captureState is the camera side of the App.
type captureState struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	frameMu sync.RWMutex
	frame   []byte
	frameAt time.Time
}

// Start opens the camera and runs the capture loop until ctx is cancelled or
// Stop is called. Frames are only scored while a session is in progress.
func (a *App) Start(ctx context.Context) error {
	c := &a.capture
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if a.config.Camera == nil || a.config.Detector == nil {
		return ErrNoCamera
	}
	if err := a.config.Camera.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go func() {
		defer close(c.done)
		a.runPipeline(ctx)
	}()

	a.logger.Info("capture started", "fps", a.config.Camera.FPS())
	return nil
}

// Stop ends the capture loop and closes the camera.
func (a *App) Stop() error {
	c := &a.capture
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.cancel()
	<-c.done
	c.running = false

	err := a.config.Camera.Close()
	if derr := a.config.Detector.Close(); derr != nil {
		err = errors.Join(err, derr)
	}
	a.logger.Info("capture stopped")
	return err
}

// IsRunning reports whether the capture loop is active.
func (a *App) IsRunning() bool {
	a.capture.mu.Lock()
	defer a.capture.mu.Unlock()
	return a.capture.running
}

// LatestFrame returns the most recent camera frame as JPEG.
func (a *App) LatestFrame() ([]byte, time.Time, bool) {
	c := &a.capture
	c.frameMu.RLock()
	defer c.frameMu.RUnlock()
	if c.frame == nil {
		return nil, time.Time{}, false
	}
	return c.frame, c.frameAt, true
}

// storeFrame keeps a mirrored JPEG of frame so the preview matches the
// mirror-view keypoints.
func (a *App) storeFrame(frame *gocv.Mat) {
	mirrored := gocv.NewMat()
	defer mirrored.Close()
	gocv.Flip(*frame, &mirrored, 1)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mirrored)
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	c := &a.capture
	c.frameMu.Lock()
	c.frame = data
	c.frameAt = time.Now()
	c.frameMu.Unlock()
}

// runPipeline reads frames at a rate picked by capture.Presence: motion or a
// detected person keeps capture at the active rate, and after the idle
// timeout without either it drops to the idle rate.
func (a *App) runPipeline(ctx context.Context) {
	cam := a.config.Camera
	presence := capture.NewPresence(a.config.MotionThreshold, a.config.ActiveFPS, a.config.IdleFPS, a.config.IdleTimeout)
	defer presence.Close()

	fps := presence.ActiveFPS()
	cam.SetFPS(fps)
	ticker := time.NewTicker(capture.Interval(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			observability.RecordFrame(observability.FrameError)
			a.logger.Debug("read frame", "error", err)
			continue
		}

		a.storeFrame(frame)

		present := false
		if a.IsTraining() {
			present = a.scoreFrame(ctx, frame)
		} else {
			observability.RecordFrame(observability.FrameIdle)
		}
		next, _ := presence.Observe(frame, present)
		frame.Close()

		if next != fps {
			fps = next
			cam.SetFPS(fps)
			ticker.Reset(capture.Interval(fps))
			a.logger.Debug("capture rate changed", "fps", fps, "idle", presence.Idle())
		}
	}
}

// scoreFrame detects a skeleton in frame and scores it. It reports whether a
// person was found.
func (a *App) scoreFrame(ctx context.Context, frame *gocv.Mat) bool {
	sk, err := a.config.Detector.Detect(frame)
	if err != nil {
		observability.RecordDetectorError()
		observability.RecordFrame(observability.FrameError)
		a.logger.Warn("pose detection failed", "error", err)
		return false
	}

	if _, err := a.ProcessSkeleton(ctx, sk); err != nil && !errors.Is(err, ErrNotTraining) {
		a.logger.Warn("score frame", "error", err)
	}
	return !sk.Empty()
}
