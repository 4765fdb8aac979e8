package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.AutosaveInterval != 2 {
		t.Errorf("AutosaveInterval = %d", cfg.AutosaveInterval)
	}
	if cfg.UserID != "" {
		t.Errorf("UserID = %q, want empty", cfg.UserID)
	}
}

func TestLoadConfigFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	contents := `server_url = "https://topo.example.com"
user_id = "alice"
autosave_interval_seconds = 30
`
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.ServerURL != "https://topo.example.com" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.AutosaveInterval != 30 {
		t.Errorf("AutosaveInterval = %d", cfg.AutosaveInterval)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(`user_id = "bob"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	// Unset fields keep their defaults.
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.UserID != "bob" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.AutosaveInterval != 2 {
		t.Errorf("AutosaveInterval = %d", cfg.AutosaveInterval)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("{not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() should fail on malformed TOML")
	}
}
