// Package main provides a speech plugin. It reads a cue request on stdin and
// speaks it with say on macOS or espeak elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action   string          `json:"action"`
	Event    string          `json:"event"`
	PoseID   string          `json:"pose_id"`
	PoseName string          `json:"pose_name"`
	Accuracy float64         `json:"accuracy"`
	Message  string          `json:"message"`
	Config   json.RawMessage `json:"config"`
	Params   json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SayConfig is the cue configuration for the say action. Text may contain
// {pose} and {accuracy} placeholders.
type SayConfig struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Rate  int    `json:"rate"`
}

// defaultPhrases are spoken when a cue has no text of its own.
var defaultPhrases = map[string]string{
	"hold.started":         "Hold {pose}",
	"hold.lost":            "Adjust your {pose}",
	"pose.completed":       "{pose} complete",
	"pose.advanced":        "Next pose, {pose}",
	"pose.advance_skipped": "No other pose is active",
	"session.started":      "Session started",
	"session.ended":        "Session ended",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "say":
		if err := handleSay(req); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

func handleSay(req Request) error {
	var cfg SayConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	text := phrase(req, cfg)
	if text == "" {
		return fmt.Errorf("nothing to say for event %q", req.Event)
	}

	name, args := speechCommand(runtime.GOOS, text, cfg)
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// phrase picks the text to speak and fills in placeholders.
func phrase(req Request, cfg SayConfig) string {
	text := cfg.Text
	if text == "" {
		text = req.Message
	}
	if text == "" {
		text = defaultPhrases[req.Event]
	}

	pose := req.PoseName
	if pose == "" {
		pose = "pose"
	}
	return strings.NewReplacer(
		"{pose}", pose,
		"{accuracy}", strconv.Itoa(int(req.Accuracy+0.5)),
	).Replace(text)
}

// speechCommand returns the synthesizer invocation for goos.
func speechCommand(goos, text string, cfg SayConfig) (string, []string) {
	if goos == "darwin" {
		var args []string
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if cfg.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(cfg.Rate))
		}
		return "say", append(args, text)
	}

	var args []string
	if cfg.Voice != "" {
		args = append(args, "-v", cfg.Voice)
	}
	if cfg.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(cfg.Rate))
	}
	return "espeak", append(args, text)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
