//go:build sqlite && postgres

package main

import (
	"fmt"

	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

// openBackend picks PostgreSQL if DATABASE_URL is set, otherwise SQLite.
func openBackend(cfg *config.Config, logger observability.Logger) (*backend, error) {
	if cfg.DatabaseURL != "" {
		be, err := openPostgres(cfg.DatabaseURL)
		if err == nil {
			logger.Info("using postgres store")
			return be, nil
		}
		logger.Error("postgres init failed; falling back to sqlite", "error", err)
	}
	be, err := openSQLite(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite init: %w", err)
	}
	logger.Info("using sqlite store", "dsn", cfg.SQLiteDSN)
	return be, nil
}

func migrationStatus(cfg *config.Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return postgresStatus(cfg.DatabaseURL)
	}
	return sqliteStatus(cfg.SQLiteDSN)
}
