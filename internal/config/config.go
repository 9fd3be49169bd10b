package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aryannaik/bookmark-search/internal/index"
	"github.com/aryannaik/bookmark-search/internal/logging"
	"github.com/aryannaik/bookmark-search/internal/store"
)

type Config struct {
	Port             string
	DataDir          string
	StoreBackend     string
	LogLevel         slog.Level
	LogFormat        string
	SearchLimit      int
	SearchMode       index.Mode
	CompactThreshold int
	CompactInterval  time.Duration
	InboxSize        int
}

// Load reads .env files (if present) and then the process environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         env("PORT", "8990"),
		DataDir:      env("DATA_DIR", "data"),
		StoreBackend: env("STORE_BACKEND", store.BackendPebble),
		LogFormat:    env("LOG_FORMAT", "text"),
	}

	switch cfg.StoreBackend {
	case store.BackendPebble, store.BackendJSON:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend)
	}

	var err error
	if cfg.LogLevel, err = logging.ParseLevel(env("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.SearchLimit, err = positiveInt(env("SEARCH_LIMIT", "5")); err != nil {
		return Config{}, fmt.Errorf("SEARCH_LIMIT: %w", err)
	}
	if cfg.SearchMode, err = index.ParseMode(env("SEARCH_MODE", "and")); err != nil {
		return Config{}, fmt.Errorf("SEARCH_MODE: %w", err)
	}
	if cfg.CompactThreshold, err = strconv.Atoi(env("COMPACT_THRESHOLD", "256")); err != nil {
		return Config{}, fmt.Errorf("COMPACT_THRESHOLD: %w", err)
	}
	if cfg.InboxSize, err = positiveInt(env("INBOX_SIZE", "64")); err != nil {
		return Config{}, fmt.Errorf("INBOX_SIZE: %w", err)
	}
	if cfg.CompactInterval, err = time.ParseDuration(env("COMPACT_INTERVAL", "24h")); err != nil {
		return Config{}, fmt.Errorf("COMPACT_INTERVAL: %w", err)
	}
	if cfg.CompactInterval <= 0 {
		return Config{}, fmt.Errorf("COMPACT_INTERVAL: must be positive, got %s", cfg.CompactInterval)
	}
	return cfg, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
