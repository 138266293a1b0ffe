// Package config loads the server configuration from environment variables.
//
// Load fails instead of falling back to insecure defaults: a missing
// JWT_SECRET, or a Mongo driver without MONGODB_URI, stops the process before
// it starts listening.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	// minSecretLength mirrors the check in auth.NewTokenService so the
	// problem is reported as a configuration error at startup.
	minSecretLength = 16
)

var (
	ErrMissingSecret   = errors.New("config: JWT_SECRET is required")
	ErrShortSecret     = fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength)
	ErrMissingMongoURI = errors.New("config: MONGODB_URI is required when STORE_DRIVER=mongo")
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port int

	JWTSecret   string
	BcryptCost  int
	HashWorkers int

	StoreDriver   string // "mongo" or "sqlite"
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	CORSAllowedOrigins []string
	FrontendDir        string // optional; empty disables static serving

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// load is Load with an injectable lookup, used by the tests.
func load(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		JWTSecret:     getenv("JWT_SECRET"),
		StoreDriver:   strings.ToLower(env("STORE_DRIVER", DriverMongo)),
		MongoURI:      env("MONGODB_URI", ""),
		MongoDatabase: env("MONGODB_DATABASE", "module_catalog"),
		SQLitePath:    env("DB_PATH", "data/catalog.db"),
		FrontendDir:   env("FRONTEND_DIR", ""),
		LogFormat:     strings.ToLower(env("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.Port, err = intEnv(env, "PORT", 4000); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = intEnv(env, "BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.HashWorkers, err = intEnv(env, "HASH_WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(env("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants Load relies on. It is exported so tests and
// alternative entry points that build a Config by hand get the same checks.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if len(c.JWTSecret) < minSecretLength {
		return ErrShortSecret
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: DB_PATH must not be empty")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.HashWorkers < 1 {
		return fmt.Errorf("config: HASH_WORKERS must be at least 1, got %d", c.HashWorkers)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func intEnv(env func(string, string) string, key string, fallback int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw) // Atoi = ASCII to Integer
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}
