package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinTradeSize != 1000 {
		t.Fatalf("expected default min trade size 1000, got %f", cfg.MinTradeSize)
	}
	if cfg.LiveData {
		t.Fatalf("live data should be off by default")
	}
	if !cfg.HistoryEnabled {
		t.Fatalf("history should be on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SENTINEL_DATA_DIR", dir)
	t.Setenv("SENTINEL_LIVE_DATA", "true")
	t.Setenv("SENTINEL_SIMULATION_SEED", "7")
	t.Setenv("SENTINEL_MIN_TRADE_SIZE", "250")
	t.Setenv("SENTINEL_HISTORY_ENABLED", "false")

	cfg := DefaultConfig()

	if cfg.DataDir != dir {
		t.Fatalf("expected data dir %s, got %s", dir, cfg.DataDir)
	}
	if cfg.DataCacheDir != filepath.Join(dir, "cache") {
		t.Fatalf("cache dir should follow data dir, got %s", cfg.DataCacheDir)
	}
	if !cfg.LiveData {
		t.Fatalf("SENTINEL_LIVE_DATA not applied")
	}
	if cfg.SimulationSeed != 7 {
		t.Fatalf("expected seed 7, got %d", cfg.SimulationSeed)
	}
	if cfg.MinTradeSize != 250 {
		t.Fatalf("expected min trade size 250, got %f", cfg.MinTradeSize)
	}
	if cfg.HistoryEnabled {
		t.Fatalf("SENTINEL_HISTORY_ENABLED=false not applied")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.DataCacheDir = filepath.Join(dir, "data", "cache")
	cfg.HistoryDBPath = filepath.Join(dir, "db", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTradeSize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative min trade size")
	}

	cfg = DefaultConfig()
	cfg.HistoryEnabled = true
	cfg.HistoryDBPath = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing history path")
	}
}
