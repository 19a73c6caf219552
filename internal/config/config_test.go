package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.StartPort != 8050 {
		t.Fatalf("start_port = %d, want 8050", cfg.Server.StartPort)
	}
	if cfg.Viewer.SettleDelayMS != 1000 {
		t.Fatalf("settle_delay_ms = %d, want 1000", cfg.Viewer.SettleDelayMS)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log_level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
default_display: 1
displays:
  - index: 0
    x: 0
    y: 0
    width: 1920
    height: 1080
  - index: 1
    x: 1920
    y: 0
    width: 1280
    height: 1024
viewer:
  update_page: true
  settle_delay_ms: 250
  web_extensions: [html]
server:
  start_port: 9000
log_level: debug
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultDisplay != 1 {
		t.Fatalf("default_display = %d", cfg.DefaultDisplay)
	}
	if len(cfg.Displays) != 2 {
		t.Fatalf("displays = %d", len(cfg.Displays))
	}
	if !cfg.Viewer.UpdatePage || cfg.Viewer.SettleDelayMS != 250 {
		t.Fatalf("viewer not overridden: %+v", cfg.Viewer)
	}
	if cfg.Viewer.IsWebExtension("htm") {
		t.Fatal("web_extensions should be replaced, not merged")
	}
	if cfg.Server.StartPort != 9000 {
		t.Fatalf("start_port = %d", cfg.Server.StartPort)
	}
	// Untouched sections keep defaults.
	if cfg.Server.Host != "localhost" {
		t.Fatalf("host = %q", cfg.Server.Host)
	}

	d, ok := cfg.DisplayByIndex(1)
	if !ok || d.Extent().Width != 1280 {
		t.Fatalf("DisplayByIndex(1) = %+v, ok = %v", d, ok)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "no_such_key: 1\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected strict decoding failure")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		path    string
	}{
		{"negative default display", func(c *Config) { c.DefaultDisplay = -1 }, "default_display"},
		{"duplicate display index", func(c *Config) {
			c.Displays = []DisplayConfig{
				{Index: 0, Width: 100, Height: 100},
				{Index: 0, Width: 100, Height: 100},
			}
		}, "displays[1].index"},
		{"zero display size", func(c *Config) {
			c.Displays = []DisplayConfig{{Index: 0}}
		}, "displays[0]"},
		{"bad warn action", func(c *Config) {
			c.Viewer.ScriptWarnings = map[string]WarnAction{"osascript": "explode"}
		}, "viewer.script_warnings.osascript"},
		{"bad port", func(c *Config) { c.Server.StartPort = 0 }, "server.start_port"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.HasPrefix(verr.Path, tt.path) {
				t.Fatalf("path = %q, want prefix %q", verr.Path, tt.path)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
