package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storysync.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
user_id: user-1
backend:
  url: https://example.supabase.co
  anon_key: anon-abc
cache:
  driver: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", cfg.UserID)
	}
	if !cfg.Backend.Configured() {
		t.Errorf("backend should be configured")
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Cache.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.Cache.Driver)
	}
	if cfg.RetryPolicy != "give-up-after-first-attempt" {
		t.Errorf("expected default retry policy, got %q", cfg.RetryPolicy)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	// Run from an empty directory so no stray storysync.yaml is picked up.
	tmp := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(old)
	t.Setenv("HOME", tmp)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.Configured() {
		t.Errorf("backend must be unconfigured by default")
	}
	if cfg.Cache.Driver != "sqlite" {
		t.Errorf("expected sqlite default driver, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.Path == "" {
		t.Errorf("expected a default sqlite path")
	}
	if cfg.Daemon.SyncInterval != 5*time.Minute {
		t.Errorf("expected default sync interval, got %v", cfg.Daemon.SyncInterval)
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://example.supabase.co
  anon_key: from-file
`)
	t.Setenv("STORYSYNC_BACKEND_ANON_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.AnonKey != "from-env" {
		t.Errorf("expected env override, got %q", cfg.Backend.AnonKey)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		UserID: "user-7",
		Backend: Backend{
			URL:     "https://example.supabase.co",
			AnonKey: "anon-xyz",
		},
		Cache: Cache{Driver: "memory"},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.UserID != "user-7" || out.Backend.AnonKey != "anon-xyz" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}
