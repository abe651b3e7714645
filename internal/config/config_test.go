package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if got := cfg.EffectiveRoutesFile(); got != "tmp/routes_file.txt" {
		t.Errorf("routes file = %q, want default", got)
	}
	exts := cfg.EffectiveViewExtensions()
	if len(exts) != 2 || exts[0] != "html.haml" || exts[1] != "json.jbuilder" {
		t.Errorf("view extensions = %v, want defaults", exts)
	}
	if !cfg.EffectiveCacheEnabled() {
		t.Error("cache should default to enabled")
	}
	if cfg.EffectiveCacheMaxAge() != 0 {
		t.Errorf("max age = %v, want 0", cfg.EffectiveCacheMaxAge())
	}
}

func TestLoadOverrides(t *testing.T) {
	ws := t.TempDir()
	content := `routes_file: config/routes_dump.txt
view_extensions:
  - html.erb
  - html.haml
cache:
  enabled: false
  max_age: 300
`
	if err := os.WriteFile(filepath.Join(ws, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(ws)
	if got := cfg.EffectiveRoutesFile(); got != "config/routes_dump.txt" {
		t.Errorf("routes file = %q", got)
	}
	exts := cfg.EffectiveViewExtensions()
	if len(exts) != 2 || exts[0] != "html.erb" {
		t.Errorf("view extensions = %v", exts)
	}
	if cfg.EffectiveCacheEnabled() {
		t.Error("cache should be disabled")
	}
	if cfg.EffectiveCacheMaxAge() != 5*time.Minute {
		t.Errorf("max age = %v, want 5m", cfg.EffectiveCacheMaxAge())
	}
}

func TestLoadInvalidYAMLUsesDefaults(t *testing.T) {
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, FileName), []byte("routes_file: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(ws)
	if got := cfg.EffectiveRoutesFile(); got != "tmp/routes_file.txt" {
		t.Errorf("routes file = %q, want default after invalid yaml", got)
	}
}
