// Package cli provides common initialization shared by cmd/khata and
// cmd/khata-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"khata/internal/config"
	"khata/internal/ledger"
	applog "khata/internal/log"
	"khata/internal/storage"
	"khata/internal/storage/memory"
)

// SetupLogger initializes structured logging and sets it as the default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored: the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the configured data backend, exiting on failure.
func InitStore(logger *applog.Logger, cfg *config.Config) ledger.Store {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized memory backend")
		return memory.NewRepository()
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				"error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return repo
	}
}
