package main

import (
	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
	"leadsearch/internal/storage"
)

// backend is the set of stores selected for this build (see store_*.go).
// The search log and session store share the lead store's connection.
type backend struct {
	store     storage.Store
	searchLog audit.SearchLog
	sessions  auth.SessionStore
	// durable is false for the in-memory fallback.
	durable bool
}

func (b *backend) Close() error {
	return b.store.Close()
}

func memoryBackend() *backend {
	return &backend{
		store:     storage.NewMemoryStore(),
		searchLog: audit.NewMemorySearchLog(),
		sessions:  auth.NewMemorySessionStore(),
	}
}
