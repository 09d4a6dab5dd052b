//go:build sqlite && !postgres

package main

import (
	"fmt"

	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

// openBackend returns SQLite-backed stores when built with the 'sqlite' tag.
// Configure with SQLITE_DSN (e.g. file:leadsearch.db?cache=shared&_fk=1).
func openBackend(cfg *config.Config, logger observability.Logger) (*backend, error) {
	be, err := openSQLite(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite init: %w", err)
	}
	logger.Info("using sqlite store", "dsn", cfg.SQLiteDSN)
	return be, nil
}

func migrationStatus(cfg *config.Config) (string, error) {
	return sqliteStatus(cfg.SQLiteDSN)
}
