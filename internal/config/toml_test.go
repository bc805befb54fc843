package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.API.BaseURL != nil || cfg.API.Timeout != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesValues(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base-url = "http://localhost:8080"
timeout = "3s"

[ui]
toast-duration = "1m30s"
color = false

[serve]
addr = ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL == nil || *cfg.API.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected base url: %v", cfg.API.BaseURL)
	}
	if cfg.API.Timeout == nil || cfg.API.Timeout.Duration != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.API.Timeout)
	}
	if cfg.UI.ToastDuration == nil || cfg.UI.ToastDuration.Duration != 90*time.Second {
		t.Fatalf("unexpected toast duration: %v", cfg.UI.ToastDuration)
	}
	if cfg.UI.Color == nil || *cfg.UI.Color {
		t.Fatalf("unexpected color setting: %v", cfg.UI.Color)
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != ":9000" {
		t.Fatalf("unexpected serve addr: %v", cfg.Serve.Addr)
	}
	if cfg.Serve.DB != nil {
		t.Fatalf("expected unset db, got %v", *cfg.Serve.DB)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nbase-url = \"http://file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvAPIURL, "http://env")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL == nil || *cfg.API.BaseURL != "http://env" {
		t.Fatalf("expected env override, got %v", cfg.API.BaseURL)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\ntimeout = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	if got := DefaultConfigPath(); got != filepath.Join(dir, "nomes", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "nomes", "nomes.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "nomes", "nomes.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}
