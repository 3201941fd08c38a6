package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"mailsort/internal/platform/config"
)

func TestNewReturnsDefaultsWithoutConfigFile(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	cfg, err := config.New(ws)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Storage != config.StorageSQLite {
		t.Fatalf("expected sqlite storage, got %s", cfg.Storage)
	}
	if cfg.DBPath != filepath.Join(ws, ".mailsort", "mailsort.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.SessionKey != config.DefaultSessionKey {
		t.Fatalf("unexpected session key %s", cfg.SessionKey)
	}
	if cfg.Shortcuts["1"] != "spam" || cfg.Shortcuts["3"] != "legitimate" {
		t.Fatalf("unexpected default shortcuts %v", cfg.Shortcuts)
	}
}

func TestNewOverlaysYAMLFile(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	dir := filepath.Join(ws, ".mailsort")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := "storage: file\nexport_dir: out\nexport_format: xlsx\nlog:\n  level: debug\ningest:\n  concurrency: 2\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(ws)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Storage != config.StorageFile || cfg.ExportFormat != config.FormatXLSX {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.ExportDir != filepath.Join(ws, "out") {
		t.Fatalf("relative export dir should resolve against workspace, got %s", cfg.ExportDir)
	}
	if cfg.Log.Level != "debug" || cfg.Ingest.Concurrency != 2 {
		t.Fatalf("nested overlay not applied: %+v", cfg)
	}
	if cfg.Ingest.JSONPath != "$" {
		t.Fatalf("unset keys must keep defaults, got %q", cfg.Ingest.JSONPath)
	}
	if len(cfg.Shortcuts) == 0 {
		t.Fatalf("shortcuts should fall back to defaults")
	}
}

func TestNewRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty workspace must fail")
	}
	ws := t.TempDir()
	dir := filepath.Join(ws, ".mailsort")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: redis\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(ws); err == nil {
		t.Fatalf("unsupported storage must fail")
	}
}

func TestConfiguredShortcutsReplaceDefaults(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	dir := filepath.Join(ws, ".mailsort")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("shortcuts:\n  x: receipt\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(ws)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if len(cfg.Shortcuts) != 1 || cfg.Shortcuts["x"] != "receipt" {
		t.Fatalf("configured shortcuts must replace the defaults, got %v", cfg.Shortcuts)
	}
	if config.DefaultShortcuts()["1"] != "spam" {
		t.Fatalf("defaults must not be mutated")
	}
}

func TestNewRejectsUnknownShortcutLabel(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	dir := filepath.Join(ws, ".mailsort")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("shortcuts:\n  x: urgent\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(ws); err == nil {
		t.Fatalf("unknown shortcut label must fail")
	}
}
