package capture

import (
	"sync"
	"time"
)

// RateGate picks the capture rate from recent motion. While motion has been
// seen within the idle timeout the active rate applies; afterwards capture
// drops to the idle rate until motion returns.
type RateGate struct {
	mu          sync.Mutex
	activeFPS   int
	idleFPS     int
	idleTimeout time.Duration
	lastMotion  time.Time
	now         func() time.Time
}

// NewRateGate creates a gate that starts in the active state.
func NewRateGate(activeFPS, idleFPS int, idleTimeout time.Duration) *RateGate {
	g := &RateGate{
		activeFPS:   activeFPS,
		idleFPS:     idleFPS,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
	g.lastMotion = g.now()
	return g
}

// Observe records the motion result of the latest frame and returns the
// rate to capture the next frame at.
func (g *RateGate) Observe(motion bool) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if motion {
		g.lastMotion = now
	}
	if now.Sub(g.lastMotion) >= g.idleTimeout {
		return g.idleFPS
	}
	return g.activeFPS
}

// Idle reports whether the gate is currently at the idle rate.
func (g *RateGate) Idle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Sub(g.lastMotion) >= g.idleTimeout
}

// Interval returns the frame period for fps. Non-positive rates map to one
// frame per second.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(fps)
}
