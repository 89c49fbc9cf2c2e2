// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	// Application settings
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	AppPort   int    `env:"APP_PORT" envDefault:"8000"`
	SecretKey string `env:"SECRET_KEY" envDefault:"dev-secret-change-me"`

	// Tokens
	JWTSecret     string `env:"JWT_SECRET_KEY" envDefault:"dev-jwt-secret-change-me"`
	AccessMinutes int    `env:"JWT_ACCESS_MINUTES" envDefault:"30"`
	RefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"14"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"10"`

	// Database: mysql in production, sqlite3 for local development and tests
	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"root@tcp(localhost:3306)/ebbing_assist?parseTime=true&loc=UTC&charset=utf8mb4"`

	// Redis backs the rate limiter; RabbitMQ carries activity events.
	RedisURL  string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	BrokerURL string `env:"BROKER_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Background scheduler
	SchedulerEnabled       bool          `env:"SCHEDULER_ENABLED" envDefault:"false"`
	SchedulerStatsInterval time.Duration `env:"SCHEDULER_STATS_INTERVAL" envDefault:"5m"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// AccessTTL is the lifetime of access tokens.
func (c *Config) AccessTTL() time.Duration { return time.Duration(c.AccessMinutes) * time.Minute }

// RefreshTTL is the lifetime of refresh tokens.
func (c *Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshDays) * 24 * time.Hour }

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.AppPort) }

// Load reads an optional .env file from the working directory and parses
// the environment into a Config. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.RateLimit.normalize()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite3":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want mysql or sqlite3", c.DBDriver)
	}
	if c.AccessMinutes <= 0 || c.RefreshDays <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or text", c.LogFormat)
	}
	return nil
}
