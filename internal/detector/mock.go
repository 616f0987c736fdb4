package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/asana/internal/skeleton"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	sk    skeleton.Skeleton
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetSkeleton sets the skeleton that will be returned by Detect.
func (m *MockDetector) SetSkeleton(sk skeleton.Skeleton) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sk = sk
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured skeleton or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (skeleton.Skeleton, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return skeleton.Skeleton{}, m.err
	}
	return m.sk, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingSkeleton returns a preset skeleton of a person standing upright
// with arms at their sides.
func StandingSkeleton() skeleton.Skeleton {
	return skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		skeleton.Nose:          {X: 0.50, Y: 0.10, Confidence: 0.98},
		skeleton.LeftShoulder:  {X: 0.58, Y: 0.25, Confidence: 0.97},
		skeleton.RightShoulder: {X: 0.42, Y: 0.25, Confidence: 0.97},
		skeleton.LeftElbow:     {X: 0.60, Y: 0.40, Confidence: 0.93},
		skeleton.RightElbow:    {X: 0.40, Y: 0.40, Confidence: 0.93},
		skeleton.LeftWrist:     {X: 0.61, Y: 0.53, Confidence: 0.90},
		skeleton.RightWrist:    {X: 0.39, Y: 0.53, Confidence: 0.90},
		skeleton.LeftHip:       {X: 0.55, Y: 0.55, Confidence: 0.95},
		skeleton.RightHip:      {X: 0.45, Y: 0.55, Confidence: 0.95},
		skeleton.LeftKnee:      {X: 0.55, Y: 0.72, Confidence: 0.92},
		skeleton.RightKnee:     {X: 0.45, Y: 0.72, Confidence: 0.92},
		skeleton.LeftAnkle:     {X: 0.55, Y: 0.90, Confidence: 0.90},
		skeleton.RightAnkle:    {X: 0.45, Y: 0.90, Confidence: 0.90},
	})
}

// ArmsRaisedSkeleton returns a preset skeleton of a person standing with
// both arms stretched overhead.
func ArmsRaisedSkeleton() skeleton.Skeleton {
	return StandingSkeleton().
		With(skeleton.LeftElbow, skeleton.Keypoint{X: 0.60, Y: 0.12, Confidence: 0.93}).
		With(skeleton.RightElbow, skeleton.Keypoint{X: 0.40, Y: 0.12, Confidence: 0.93}).
		With(skeleton.LeftWrist, skeleton.Keypoint{X: 0.60, Y: 0.00, Confidence: 0.90}).
		With(skeleton.RightWrist, skeleton.Keypoint{X: 0.40, Y: 0.00, Confidence: 0.90})
}
