// Package testdata embeds recorded detections used by the end-to-end tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/asana/internal/skeleton"
)

//go:embed detections/*.json
var detectionsFS embed.FS

// LoadDetection loads a recorded detection by name, without the .json suffix.
func LoadDetection(name string) (skeleton.Skeleton, error) {
	data, err := detectionsFS.ReadFile("detections/" + name + ".json")
	if err != nil {
		return skeleton.Skeleton{}, fmt.Errorf("load detection %s: %w", name, err)
	}

	var sk skeleton.Skeleton
	if err := json.Unmarshal(data, &sk); err != nil {
		return skeleton.Skeleton{}, fmt.Errorf("decode detection %s: %w", name, err)
	}
	return sk, nil
}

// Detections lists the embedded detection names in sorted order.
func Detections() []string {
	entries, err := detectionsFS.ReadDir("detections")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// RawDetection returns the JSON bytes of a recorded detection.
func RawDetection(name string) ([]byte, error) {
	return detectionsFS.ReadFile("detections/" + name + ".json")
}
