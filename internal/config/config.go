// Package config loads the settings of the fillresp command from the
// environment and builds its logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/ggoodman/autofill-go/internal/logctx"
)

// Storage backends selectable with FILLRESP_STORAGE.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds the command settings. Redis connection settings are read
// separately by the redis storage package.
type Config struct {
	// LogLevel is one of debug, info, warn or error. ENV: FILLRESP_LOG_LEVEL
	LogLevel string `env:"FILLRESP_LOG_LEVEL,default=info"`

	// LogFormat is text or json. ENV: FILLRESP_LOG_FORMAT
	LogFormat string `env:"FILLRESP_LOG_FORMAT,default=text"`

	// Storage selects the response cache backend. ENV: FILLRESP_STORAGE
	Storage string `env:"FILLRESP_STORAGE,default=memory"`

	// CacheSize bounds the in-memory backend. ENV: FILLRESP_CACHE_SIZE
	CacheSize int `env:"FILLRESP_CACHE_SIZE,default=1024"`

	// CacheTTL is the lifetime of cached responses. ENV: FILLRESP_CACHE_TTL
	CacheTTL time.Duration `env:"FILLRESP_CACHE_TTL,default=1h"`
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Storage:   StorageMemory,
		CacheSize: 1024,
		CacheTTL:  time.Hour,
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: FILLRESP_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	switch c.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("config: FILLRESP_STORAGE must be memory or redis, got %q", c.Storage)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: FILLRESP_CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: FILLRESP_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: FILLRESP_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// NewLogger builds the command logger writing to w. Records are enriched
// with the session, response and file carried by the context.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(logctx.Handler{Handler: h})
}
