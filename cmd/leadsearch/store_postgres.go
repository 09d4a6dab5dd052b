//go:build postgres && !sqlite

package main

import (
	"errors"
	"fmt"

	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

// openBackend returns PostgreSQL-backed stores when built with the
// 'postgres' tag. Configure with DATABASE_URL.
func openBackend(cfg *config.Config, logger observability.Logger) (*backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required in postgres builds")
	}
	be, err := openPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}
	logger.Info("using postgres store")
	return be, nil
}

func migrationStatus(cfg *config.Config) (string, error) {
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL is required in postgres builds")
	}
	return postgresStatus(cfg.DatabaseURL)
}
