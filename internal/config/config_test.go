package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Build.TimeoutSeconds != 3600 {
		t.Errorf("build timeout = %d, want 3600", cfg.Build.TimeoutSeconds)
	}
	if cfg.Tests.DefaultTimeoutSeconds != 30 {
		t.Errorf("default test timeout = %d, want 30", cfg.Tests.DefaultTimeoutSeconds)
	}
	if !cfg.Tests.RequireExitZero {
		t.Error("output_contains should require exit zero by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `build:
  timeout_seconds: 600
tests:
  default_timeout_seconds: 10
paths:
  rubric_dir: rubrics/auto
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Build.TimeoutSeconds != 600 {
		t.Errorf("build timeout = %d, want 600", cfg.Build.TimeoutSeconds)
	}
	if cfg.Tests.DefaultTimeoutSeconds != 10 {
		t.Errorf("default test timeout = %d, want 10", cfg.Tests.DefaultTimeoutSeconds)
	}
	if cfg.Paths.RubricDir != "rubrics/auto" {
		t.Errorf("rubric dir = %q, want rubrics/auto", cfg.Paths.RubricDir)
	}
	// Unset fields keep defaults
	if cfg.Paths.ReportsByModelDir != "reports-by-model" {
		t.Errorf("reports-by-model dir = %q, want default", cfg.Paths.ReportsByModelDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("build: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("build:\n  timeout_seconds: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject non-positive build timeout")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Build.TimeoutSeconds != 3600 {
		t.Errorf("missing config should fall back to defaults")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Build.TimeoutSeconds = 1200

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Build.TimeoutSeconds != 1200 {
		t.Errorf("round-tripped timeout = %d, want 1200", loaded.Build.TimeoutSeconds)
	}
}
