package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root string, m Manifest) string {
	t.Helper()

	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return dir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	pluginDir := writeManifest(t, root, Manifest{
		Name:        "announce",
		Version:     "1.0.0",
		Description: "Speaks training cues",
		Executable:  "announce",
		Actions:     []string{"say"},
	})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "announce" {
		t.Errorf("expected plugin name 'announce', got %q", plugin.Manifest.Name)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "announce") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_Discover_MultiplePluginsSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"notify", "announce", "chime"} {
		writeManifest(t, root, Manifest{Name: name, Executable: name})
	}

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	want := []string{"announce", "chime", "notify"}
	if len(plugins) != len(want) {
		t.Fatalf("expected %d plugins, got %d", len(want), len(plugins))
	}
	for i, name := range want {
		if plugins[i].Manifest.Name != name {
			t.Errorf("plugins[%d] = %q, want %q", i, plugins[i].Manifest.Name, name)
		}
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	root := t.TempDir()

	// Invalid JSON
	bad := filepath.Join(root, "bad")
	os.MkdirAll(bad, 0o755)
	os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("{not json"), 0o644)

	// No manifest
	os.MkdirAll(filepath.Join(root, "empty"), 0o755)

	// Plain file at top level
	os.WriteFile(filepath.Join(root, "README"), []byte("hi"), 0o644)

	// Missing executable
	writeManifest(t, root, Manifest{Name: "noexec"})

	writeManifest(t, root, Manifest{Name: "good", Executable: "good"})

	manager := NewManager(root, nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		t.Errorf("expected only the valid plugin, got %d", len(plugins))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing"), nil)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() on missing dir should not fail: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	dir := writeManifest(t, root, Manifest{Name: "announce", Executable: "announce"})

	manager := NewManager(root, nil)
	manager.Discover()
	if len(manager.List()) != 1 {
		t.Fatal("expected 1 plugin")
	}

	os.RemoveAll(dir)
	manager.Discover()
	if len(manager.List()) != 0 {
		t.Error("removed plugin should disappear after rediscovery")
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "announce", Executable: "announce"})

	manager := NewManager(root, nil)
	manager.Discover()

	if _, err := manager.Get("announce"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
	if manager.PluginDir() != root {
		t.Errorf("PluginDir() = %q", manager.PluginDir())
	}
}
