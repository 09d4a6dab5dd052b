//go:build !sqlite && !postgres

package main

import (
	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

// openBackend returns in-memory stores when built without the 'sqlite' or
// 'postgres' tags.
func openBackend(cfg *config.Config, logger observability.Logger) (*backend, error) {
	if cfg.DatabaseURL != "" {
		logger.Warn("DATABASE_URL set, but binary not built with -tags postgres; using in-memory store")
	}
	logger.Info("using in-memory store")
	return memoryBackend(), nil
}

func migrationStatus(*config.Config) (string, error) {
	return "migrations status not available in this build", nil
}
