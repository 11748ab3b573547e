// ABOUTME: Tests for client configuration loading
// ABOUTME: Verifies defaults, env overrides, .env files and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEXTSTEP_API_URL", "NEXTSTEP_TIMEOUT", "NEXTSTEP_RATE_LIMIT",
		"NEXTSTEP_SWIPE_THRESHOLD", "NEXTSTEP_MAX_RESUME_MB", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("NEXTSTEP_CONFIG_DIR", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Timeout)
	}
	if cfg.SwipeThreshold != 100 {
		t.Errorf("expected threshold 100, got %g", cfg.SwipeThreshold)
	}
	if cfg.MaxResumeBytes != 5<<20 {
		t.Errorf("expected 5MB resume limit, got %d", cfg.MaxResumeBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXTSTEP_API_URL", "api.nextstep.example.com/api/")
	t.Setenv("NEXTSTEP_SWIPE_THRESHOLD", "80")
	t.Setenv("NEXTSTEP_TIMEOUT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://api.nextstep.example.com/api" {
		t.Errorf("expected normalized URL, got %s", cfg.APIURL)
	}
	if cfg.SwipeThreshold != 80 {
		t.Errorf("expected threshold 80, got %g", cfg.SwipeThreshold)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Timeout)
	}
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	clearEnv(t)
	dir := os.Getenv("NEXTSTEP_CONFIG_DIR")
	os.Unsetenv("NEXTSTEP_RATE_LIMIT")
	t.Cleanup(func() { os.Unsetenv("NEXTSTEP_RATE_LIMIT") })

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NEXTSTEP_RATE_LIMIT=3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit != 3 {
		t.Errorf("expected rate limit 3 from .env, got %g", cfg.RateLimit)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative threshold", "NEXTSTEP_SWIPE_THRESHOLD", "-1"},
		{"zero rate limit", "NEXTSTEP_RATE_LIMIT", "0"},
		{"huge resume limit", "NEXTSTEP_MAX_RESUME_MB", "500"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected validation error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8000/api/": "http://localhost:8000/api",
		"localhost:8000/api":         "http://localhost:8000/api",
		"api.example.com":            "https://api.example.com",
		"":                           "",
	}
	for in, want := range tests {
		if got := normalizeURL(in); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != "/tmp/xdg/nextstep" {
		t.Errorf("expected /tmp/xdg/nextstep, got %s", got)
	}
}
