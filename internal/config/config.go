// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	ListenAddr string `env:"FITNESS_LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"FITNESS_LOG_LEVEL"   envDefault:"info"`
	StaticDir  string `env:"FITNESS_STATIC_DIR"`

	StorageType string `env:"FITNESS_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"FITNESS_REDIS_URL"`
	RedisPrefix string `env:"FITNESS_REDIS_PREFIX" envDefault:"fitness"`

	SessionDuration time.Duration `env:"FITNESS_SESSION_DURATION" envDefault:"24h"`
	SweepInterval   time.Duration `env:"FITNESS_SWEEP_INTERVAL"   envDefault:"1m"`
	CookieSecure    bool          `env:"FITNESS_COOKIE_SECURE"    envDefault:"false"`

	// Form submissions allowed per client per second, and burst
	FormRateLimit float64 `env:"FITNESS_FORM_RATE_LIMIT" envDefault:"2"`
	FormRateBurst int     `env:"FITNESS_FORM_RATE_BURST" envDefault:"5"`

	CORSOrigins []string `env:"FITNESS_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	MetricsEnabled bool `env:"FITNESS_METRICS_ENABLED" envDefault:"true"`
}

// Load reads any .env files present, then parses the environment
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Missing files are fine; real environment variables take precedence
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the configuration from the environment without touching .env files
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("FITNESS_REDIS_URL required when FITNESS_STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid FITNESS_STORAGE_TYPE %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if c.SessionDuration <= 0 {
		return errors.New("FITNESS_SESSION_DURATION must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("FITNESS_SWEEP_INTERVAL must be positive")
	}
	if c.FormRateLimit <= 0 || c.FormRateBurst <= 0 {
		return errors.New("FITNESS_FORM_RATE_LIMIT and FITNESS_FORM_RATE_BURST must be positive")
	}
	return nil
}

// SlogLevel converts LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
