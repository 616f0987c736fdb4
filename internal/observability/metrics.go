// Package observability exposes Prometheus metrics for scoring and hold tracking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asana"

var (
	comparisonsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scorer",
		Name:      "comparisons_total",
		Help:      "Number of skeleton comparisons performed.",
	})

	scoreHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scorer",
		Name:      "overall_score",
		Help:      "Distribution of overall similarity scores.",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	compareDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scorer",
		Name:      "compare_duration_seconds",
		Help:      "Time spent scoring one detected skeleton.",
		Buckets:   prometheus.ExponentialBuckets(0.000005, 2, 10),
	})

	framesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "frames_total",
		Help:      "Frames processed by the pipeline, labeled by outcome.",
	}, []string{"outcome"})

	detectorErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "detector_errors_total",
		Help:      "Number of failed pose detections.",
	})

	transitionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hold",
		Name:      "transitions_total",
		Help:      "Hold tracker transitions, labeled by transition.",
	}, []string{"transition"})

	completionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hold",
		Name:      "pose_completions_total",
		Help:      "Completed pose holds, labeled by pose.",
	}, []string{"pose"})

	holdGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "hold",
		Name:      "progress_percent",
		Help:      "Hold progress of the current pose.",
	})

	sessionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "1 while a training session is running.",
	})

	eventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events delivered to sinks, labeled by sink and result.",
	}, []string{"sink", "result"})
)

func init() {
	prometheus.MustRegister(
		comparisonsCounter, scoreHistogram, compareDuration,
		framesCounter, detectorErrors,
		transitionsCounter, completionsCounter, holdGauge,
		sessionGauge, eventsCounter,
	)
}

// Frame outcomes.
const (
	FrameScored   = "scored"
	FrameNoPerson = "no_person"
	FrameIdle     = "idle"
	FrameError    = "error"
)

// RecordComparison records one scored comparison.
func RecordComparison(score float64, took time.Duration) {
	comparisonsCounter.Inc()
	scoreHistogram.Observe(score)
	compareDuration.Observe(took.Seconds())
}

// RecordFrame counts a processed frame by outcome.
func RecordFrame(outcome string) {
	framesCounter.WithLabelValues(outcome).Inc()
}

// RecordDetectorError counts a failed detection.
func RecordDetectorError() {
	detectorErrors.Inc()
}

// RecordTransition counts a hold transition. "none" is not recorded.
func RecordTransition(transition string) {
	if transition == "" || transition == "none" {
		return
	}
	transitionsCounter.WithLabelValues(transition).Inc()
}

// RecordCompletion counts a completed hold of poseID.
func RecordCompletion(poseID string) {
	completionsCounter.WithLabelValues(poseID).Inc()
}

// SetHoldProgress updates the current hold progress gauge.
func SetHoldProgress(percent float64) {
	holdGauge.Set(percent)
}

// SetSessionActive flips the session gauge.
func SetSessionActive(active bool) {
	if active {
		sessionGauge.Set(1)
		return
	}
	sessionGauge.Set(0)
}

// RecordPublish counts an event delivery attempt for sink.
func RecordPublish(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsCounter.WithLabelValues(sink, result).Inc()
}
