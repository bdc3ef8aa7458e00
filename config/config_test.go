package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_API_BASE", "")
	t.Setenv("OMDB_BASE_URL", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("BOT_WORKERS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TelegramAPIBase != "https://api.telegram.org" {
		t.Errorf("unexpected api base: %s", cfg.TelegramAPIBase)
	}
	if cfg.OMDBBaseURL != "https://www.omdbapi.com" {
		t.Errorf("unexpected omdb base: %s", cfg.OMDBBaseURL)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("default cache ttl = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.Workers != 4 {
		t.Errorf("default workers = %d, want 4", cfg.Workers)
	}
	if cfg.DBDsn == "" {
		t.Errorf("expected default dsn, got empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("OMDB_TIMEOUT", "3s")
	t.Setenv("BOT_WORKERS", "8")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("cache ttl = %v, want 90s", cfg.CacheTTL)
	}
	if cfg.OMDBTimeout != 3*time.Second {
		t.Errorf("omdb timeout = %v, want 3s", cfg.OMDBTimeout)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Workers)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for invalid CACHE_TTL")
	}
	t.Setenv("CACHE_TTL", "")
	t.Setenv("BOT_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for non-positive BOT_WORKERS")
	}
}

func TestValidateBotReady(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OMDB_API_KEY", "key")
	cfg, _ := Load()
	if err := cfg.ValidateBotReady(); err != nil {
		t.Errorf("expected valid bot config, got %v", err)
	}
	if err := os.Unsetenv("OMDB_API_KEY"); err != nil {
		t.Fatalf("failed to unset OMDB_API_KEY: %v", err)
	}
	cfg, _ = Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Errorf("expected error when missing OMDB_API_KEY")
	}
}
