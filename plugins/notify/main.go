// Package main provides a desktop notification plugin. It uses AppleScript
// on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
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

// ShowConfig is the cue configuration for the show action.
type ShowConfig struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"` // macOS only
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "show" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg ShowConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	title, body := content(req, cfg)
	name, args := notifyCommand(runtime.GOOS, title, body, cfg.Sound)
	if output, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v: %s", req.Action, err, string(output)))
		return
	}

	writeSuccessResponse()
}

// content builds the notification title and body.
func content(req Request, cfg ShowConfig) (string, string) {
	title := cfg.Title
	if title == "" {
		title = req.PoseName
	}
	if title == "" {
		title = "asana"
	}

	body := cfg.Body
	if body == "" {
		body = req.Message
	}
	if body == "" {
		body = fmt.Sprintf("%s (%.0f%%)", strings.ReplaceAll(req.Event, ".", " "), req.Accuracy)
	}
	return title, body
}

// notifyCommand returns the notifier invocation for goos.
func notifyCommand(goos, title, body, sound string) (string, []string) {
	if goos == "darwin" {
		script := fmt.Sprintf("display notification %s with title %s", quote(body), quote(title))
		if sound != "" {
			script += " sound name " + quote(sound)
		}
		return "osascript", []string{"-e", script}
	}
	return "notify-send", []string{"--app-name=asana", title, body}
}

// quote renders s as an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
