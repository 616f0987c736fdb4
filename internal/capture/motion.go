package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// GaussianBlurSize is the smoothing kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change that counts as motion.
	DiffThreshold = 25
)

// MotionDetector reports the fraction of pixels that changed between
// consecutive frames. The first frame, and any frame at a new resolution,
// only sets the baseline.
type MotionDetector struct {
	mu          sync.Mutex
	threshold   float64
	baseline    gocv.Mat
	hasBaseline bool
}

// NewMotionDetector returns a detector that reports motion once more than
// threshold (a fraction in (0,1]) of the frame changes.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the baseline by more than the
// threshold, and the changed fraction. frame becomes the new baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	smoothed := smoothGray(frame)
	defer smoothed.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasBaseline || !sameSize(m.baseline, smoothed) {
		smoothed.CopyTo(&m.baseline)
		m.hasBaseline = true
		return false, 0
	}

	changed := changedFraction(smoothed, m.baseline)
	smoothed.CopyTo(&m.baseline)
	return changed > m.threshold, changed
}

// smoothGray returns a blurred single-channel copy of frame. The caller
// closes it.
func smoothGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	out := gocv.NewMat()
	k := image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}
	gocv.GaussianBlur(gray, &out, k, 0, 0, gocv.BorderDefault)
	return out
}

func sameSize(a, b gocv.Mat) bool {
	return a.Rows() == b.Rows() && a.Cols() == b.Cols()
}

// changedFraction is the share of pixels whose intensity moved by more than
// DiffThreshold.
func changedFraction(cur, prev gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

// Reset drops the baseline so the next frame starts over.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

func (m *MotionDetector) dropBaseline() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.hasBaseline = false
}

// SetThreshold changes the motion threshold. Values outside (0,1] are
// ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 || threshold > 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Presence decides whether someone is on the mat. Frame motion and a
// detected person both count, since a practitioner holding a pose is still.
// It drives a RateGate so capture slows down once the mat has been empty for
// the idle timeout.
type Presence struct {
	motion *MotionDetector
	gate   *RateGate
}

// NewPresence returns a Presence. Non-positive rates and timeouts fall back
// to DefaultFPS, 2 fps idle and a 2 second idle timeout.
func NewPresence(threshold float64, activeFPS, idleFPS int, idleTimeout time.Duration) *Presence {
	if activeFPS <= 0 {
		activeFPS = DefaultFPS
	}
	if idleFPS <= 0 {
		idleFPS = 2
	}
	if idleTimeout <= 0 {
		idleTimeout = 2 * time.Second
	}
	return &Presence{
		motion: NewMotionDetector(threshold),
		gate:   NewRateGate(activeFPS, idleFPS, idleTimeout),
	}
}

// Observe feeds the latest frame and whether a person was detected in it,
// and returns the rate for the next frame together with whether the frame
// moved. A nil frame counts as no motion.
func (p *Presence) Observe(frame *gocv.Mat, person bool) (int, bool) {
	moved, _ := p.motion.Detect(frame)
	return p.gate.Observe(moved || person), moved
}

// ActiveFPS is the rate used while someone is present.
func (p *Presence) ActiveFPS() int {
	return p.gate.activeFPS
}

// Idle reports whether capture is at the idle rate.
func (p *Presence) Idle() bool {
	return p.gate.Idle()
}

// Close releases the motion baseline.
func (p *Presence) Close() {
	p.motion.Close()
}
