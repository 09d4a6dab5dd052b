//go:build postgres

package main

import (
	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
	pgstore "leadsearch/internal/storage/postgres"
)

func openPostgres(url string) (*backend, error) {
	st, err := pgstore.New(url)
	if err != nil {
		return nil, err
	}
	return &backend{
		store:     st,
		searchLog: audit.NewPostgresSearchLogFromPool(st.Pool()),
		sessions:  auth.NewPostgresSessionStoreFromPool(st.Pool()),
		durable:   true,
	}, nil
}

func postgresStatus(url string) (string, error) {
	return pgstore.Status(url)
}
