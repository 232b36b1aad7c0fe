package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.DataCacheDir = filepath.Join(dir, "cache")
	cfg.ProxyURL = "http://localhost:8080"

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.DataDir != cfg.DataDir {
		t.Fatalf("expected data dir %s, got %s", cfg.DataDir, updated.DataDir)
	}
	if updated.ProxyURL != cfg.ProxyURL {
		t.Fatalf("expected proxy %s, got %s", cfg.ProxyURL, updated.ProxyURL)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.TimeoutSeconds = 0
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected validation error for zero timeout")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- struct{}{}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.DataDir = filepath.Join(dir, "changed")
	cfg.DataCacheDir = filepath.Join(dir, "cache")

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

func TestManagerWatchKeepsConfigOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	before := mgr.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		applied <- cfg
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(mgr.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt config: %v", err)
	}

	select {
	case cfg := <-applied:
		t.Fatalf("corrupt file must not apply, got %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
	if got := mgr.Get(); got != before {
		t.Fatalf("snapshot changed: %+v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TICKERSHEET_CACHE_ENABLED", "false")
	t.Setenv("TICKERSHEET_TIMEOUT_SECONDS", "7")

	cfg := DefaultConfig()
	if cfg.CacheEnabled {
		t.Error("expected cache disabled via env")
	}
	if cfg.TimeoutSeconds != 7 {
		t.Errorf("expected timeout 7, got %d", cfg.TimeoutSeconds)
	}
}
