package capture

import (
	"testing"
	"time"
)

func TestRateGate(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	g := NewRateGate(15, 2, 2*time.Second)
	g.now = func() time.Time { return now }
	g.lastMotion = now

	if fps := g.Observe(false); fps != 15 {
		t.Errorf("fresh gate fps = %d, want 15", fps)
	}

	now = now.Add(1500 * time.Millisecond)
	if fps := g.Observe(false); fps != 15 {
		t.Errorf("before timeout fps = %d, want 15", fps)
	}

	now = now.Add(time.Second)
	if fps := g.Observe(false); fps != 2 {
		t.Errorf("after timeout fps = %d, want 2", fps)
	}
	if !g.Idle() {
		t.Error("gate should be idle")
	}

	if fps := g.Observe(true); fps != 15 {
		t.Errorf("motion fps = %d, want 15", fps)
	}
	if g.Idle() {
		t.Error("gate should be active after motion")
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{fps: 15, want: time.Second / 15},
		{fps: 2, want: 500 * time.Millisecond},
		{fps: 0, want: time.Second},
		{fps: -3, want: time.Second},
	}

	for _, tt := range tests {
		if got := Interval(tt.fps); got != tt.want {
			t.Errorf("Interval(%d) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}
