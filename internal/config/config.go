// ABOUTME: Configuration loader for the nextstep client
// ABOUTME: Loads settings from .env files and environment variables with defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8000/api"
	DefaultTimeout        = 30 * time.Second
	DefaultRateLimit      = 10.0
	DefaultSwipeThreshold = 100.0
	DefaultMaxResumeMB    = 5
)

type Config struct {
	// API
	APIURL    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, client side

	// Local state
	ConfigDir string // holds session.json, recent resumes and debug.log

	// Interaction
	SwipeThreshold float64 // gesture units a drag must exceed to commit
	MaxResumeBytes int64

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env files (working directory first, then the config directory)
// and builds a Config from the environment. Variables already set in the
// environment always win over .env values.
func Load() (*Config, error) {
	loadDotEnv(".env")
	configDir := getEnv("NEXTSTEP_CONFIG_DIR", DefaultConfigDir())
	if configDir != "" {
		loadDotEnv(filepath.Join(configDir, ".env"))
	}

	cfg := &Config{
		APIURL:    normalizeURL(getEnv("NEXTSTEP_API_URL", DefaultAPIURL)),
		Timeout:   time.Duration(getEnvInt("NEXTSTEP_TIMEOUT", int(DefaultTimeout/time.Second))) * time.Second,
		RateLimit: getEnvFloat("NEXTSTEP_RATE_LIMIT", DefaultRateLimit),

		ConfigDir: configDir,

		SwipeThreshold: getEnvFloat("NEXTSTEP_SWIPE_THRESHOLD", DefaultSwipeThreshold),
		MaxResumeBytes: int64(getEnvInt("NEXTSTEP_MAX_RESUME_MB", DefaultMaxResumeMB)) << 20,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("NEXTSTEP_API_URL must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("NEXTSTEP_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.RateLimit <= 0 || c.RateLimit > 1000 {
		return fmt.Errorf("NEXTSTEP_RATE_LIMIT must be between 0 and 1000, got %g", c.RateLimit)
	}
	if c.SwipeThreshold <= 0 {
		return fmt.Errorf("NEXTSTEP_SWIPE_THRESHOLD must be positive, got %g", c.SwipeThreshold)
	}
	if c.MaxResumeBytes < 1<<20 || c.MaxResumeBytes > 50<<20 {
		return fmt.Errorf("NEXTSTEP_MAX_RESUME_MB must be between 1 and 50")
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nextstep")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "nextstep")
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// Malformed .env files are ignored; the environment still applies.
	_ = godotenv.Load(path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// normalizeURL adds http:// for localhost and https:// otherwise when the URL
// has no scheme, and strips trailing slashes
func normalizeURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" || strings.Contains(url, "://") {
		return url
	}
	if strings.HasPrefix(url, "localhost") || strings.HasPrefix(url, "127.0.0.1") {
		return "http://" + url
	}
	return "https://" + url
}
