package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the data clients and the CLI need: where cached
// payloads live, how the HTTP edge is shaped, and output preferences.
type Config struct {
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// HTTP edge settings. The upstream has no official API, so requests
	// carry a browser-like User-Agent.
	UserAgent      string `json:"user_agent"`
	ProxyURL       string `json:"proxy_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	CacheEnabled  bool `json:"cache_enabled"`
	CacheTTLHours int  `json:"cache_ttl_hours"`

	Debug bool `json:"debug"`
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/39.0.2171.95 Safari/537.36"

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file, then env overrides.
	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns defaults anchored under the given directory.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),

		UserAgent:      defaultUserAgent,
		TimeoutSeconds: 30,

		CacheEnabled:  true,
		CacheTTLHours: 24,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("TICKERSHEET_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("TICKERSHEET_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("TICKERSHEET_USER_AGENT"); val != "" {
		c.UserAgent = val
	}
	if val := os.Getenv("TICKERSHEET_PROXY_URL"); val != "" {
		c.ProxyURL = val
	}
	if val := os.Getenv("TICKERSHEET_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.TimeoutSeconds = v
		}
	}
	if val := os.Getenv("TICKERSHEET_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("TICKERSHEET_CACHE_TTL_HOURS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CacheTTLHours = v
		}
	}
	if val := os.Getenv("TICKERSHEET_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate rejects configurations the clients cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.CacheTTLHours < 0 {
		return fmt.Errorf("cache_ttl_hours must not be negative, got %d", c.CacheTTLHours)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.DataCacheDir}
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

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}
