// Package detector is the boundary to pose estimation. Detectors turn a
// camera frame into a skeleton of normalized keypoints.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/asana/internal/skeleton"
)

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected skeleton.
	// Returns an empty skeleton if no person is detected.
	Detect(frame *gocv.Mat) (skeleton.Skeleton, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence drops keypoints whose visibility is below this value (0.0-1.0).
	MinConfidence float64

	// Script is the path of the pose service. Empty searches the default locations.
	Script string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.3,
	}
}

// landmarkNames maps MediaPipe pose landmark indices to keypoint names.
// MediaPipe reports sides from the subject's point of view.
var landmarkNames = map[int]skeleton.Name{
	0:  skeleton.Nose,
	11: skeleton.LeftShoulder,
	12: skeleton.RightShoulder,
	13: skeleton.LeftElbow,
	14: skeleton.RightElbow,
	15: skeleton.LeftWrist,
	16: skeleton.RightWrist,
	23: skeleton.LeftHip,
	24: skeleton.RightHip,
	25: skeleton.LeftKnee,
	26: skeleton.RightKnee,
	27: skeleton.LeftAnkle,
	28: skeleton.RightAnkle,
}

// Filter returns sk without keypoints below minConfidence or with
// non-finite values.
func Filter(sk skeleton.Skeleton, minConfidence float64) skeleton.Skeleton {
	points := sk.Points()
	for name, kp := range points {
		if !kp.Valid() || kp.Confidence < minConfidence {
			delete(points, name)
		}
	}
	return skeleton.New(points)
}
