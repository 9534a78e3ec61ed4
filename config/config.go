package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Market data
	LiveData       bool   `json:"live_data"`       // use Yahoo Finance instead of the simulator
	SimulationSeed int64  `json:"simulation_seed"` // seed for the simulated data source
	CacheEnabled   bool   `json:"cache_enabled"`
	HeadlineURL    string `json:"headline_url"` // news page scraped for advisor sentiment
	UserAgent      string `json:"user_agent"`

	// Action history
	HistoryEnabled bool   `json:"history_enabled"`
	HistoryDBPath  string `json:"history_db_path"`

	// Trading defaults
	MinTradeSize float64 `json:"min_trade_size"` // USD floor below which rebalance trades are skipped

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LiveData:       false,
		SimulationSeed: 42,
		CacheEnabled:   true,
		HeadlineURL:    "https://news.google.com/search",
		UserAgent:      "Mozilla/5.0 (compatible; SentinelAgents/1.0)",

		HistoryEnabled: true,
		HistoryDBPath:  filepath.Join(currentDir, "data", "history.db"),

		MinTradeSize: 1000,

		Debug: false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("SENTINEL_DATA_DIR"); val != "" {
		c.DataDir = val
		c.DataCacheDir = filepath.Join(val, "cache")
	}
	if val := os.Getenv("SENTINEL_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("SENTINEL_LIVE_DATA"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.LiveData = enabled
		}
	}
	if val := os.Getenv("SENTINEL_SIMULATION_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.SimulationSeed = seed
		}
	}
	if val := os.Getenv("SENTINEL_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("SENTINEL_HEADLINE_URL"); val != "" {
		c.HeadlineURL = val
	}
	if val := os.Getenv("SENTINEL_USER_AGENT"); val != "" {
		c.UserAgent = val
	}

	if val := os.Getenv("SENTINEL_HISTORY_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.HistoryEnabled = enabled
		}
	}
	if val := os.Getenv("SENTINEL_HISTORY_DB"); val != "" {
		c.HistoryDBPath = val
	}

	if val := os.Getenv("SENTINEL_MIN_TRADE_SIZE"); val != "" {
		if size, err := strconv.ParseFloat(val, 64); err == nil && size >= 0 {
			c.MinTradeSize = size
		}
	}

	if val := os.Getenv("SENTINEL_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.DataCacheDir}
	if c.HistoryEnabled && c.HistoryDBPath != "" {
		dirs = append(dirs, filepath.Dir(c.HistoryDBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.MinTradeSize < 0 {
		return fmt.Errorf("min trade size must be non-negative, got %f", c.MinTradeSize)
	}
	if c.HistoryEnabled && strings.TrimSpace(c.HistoryDBPath) == "" {
		return fmt.Errorf("history enabled but no database path configured")
	}
	if c.LiveData && strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("live data requires a user agent")
	}
	return nil
}
