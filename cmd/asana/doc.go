// Command asana is the pose trainer. It serves the training API and web UI,
// drives the camera pipeline, and offers offline commands to score recorded
// detections and inspect saved progress.
package main
