package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unsupported log level")
	}
}

func TestValidateRejectsZeroCoalesceWindow(t *testing.T) {
	cfg := Default()
	cfg.Daemon.CoalesceWindow = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero coalesce window")
	}
}

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != Default().Logging.Level {
		t.Fatalf("expected default logging level, got %q", cfg.Logging.Level)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "logging:\n  level: debug\n  format: json\n  output: stdout\ndaemon:\n  state_dir: /tmp/rv\n  coalesce_window: 2s\nmetrics:\n  enabled: true\n  port: 9292\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Daemon.CoalesceWindow != 2*time.Second {
		t.Fatalf("CoalesceWindow = %v, want 2s", cfg.Daemon.CoalesceWindow)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9292 {
		t.Fatalf("unexpected metrics config: %+v", cfg.Metrics)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Logging.Level = "warn"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Logging.Level != "warn" {
		t.Fatalf("Logging.Level = %q, want warn", loaded.Logging.Level)
	}
}
