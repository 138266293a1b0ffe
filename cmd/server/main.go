// Package main is the entry point for the module catalog server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (environment variables, see internal/config)
//  2. Create dependencies (logger, store, token and password services)
//  3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/config"
	"github.com/sakif/module-catalog/internal/repository"
	mongoRepo "github.com/sakif/module-catalog/internal/repository/mongo"
	sqliteRepo "github.com/sakif/module-catalog/internal/repository/sqlite"
	"github.com/sakif/module-catalog/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. CONFIGURATION ===
	// Load fails on a missing or short JWT_SECRET, so the process never
	// listens with an insecure default.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. LOGGING ===
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// === 3. STORE ===
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// === 4. AUTH ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		_ = store.Close(ctx)
		return err
	}
	passwords := auth.NewPasswordServiceWithCost(cfg.BcryptCost, cfg.HashWorkers)

	// === 5. SERVER ===
	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		FrontendDir:        cfg.FrontendDir,
	}, store, tokens, passwords, logger)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("creating server: %w", err)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	// and closes the store on the way out.
	return srv.Start()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		// Ensure the data directory exists (like `mkdir -p`).
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		store, err := sqliteRepo.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("store ready", slog.String("driver", cfg.StoreDriver), slog.String("path", cfg.SQLitePath))
		return store, nil

	default:
		store, err := mongoRepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		// Never log the URI: it usually carries credentials.
		logger.Info("store ready", slog.String("driver", cfg.StoreDriver), slog.String("database", cfg.MongoDatabase))
		return store, nil
	}
}
