//go:build sqlite

package main

import (
	"leadsearch/internal/audit"
	"leadsearch/internal/auth"
	sqlitestore "leadsearch/internal/storage/sqlite"
)

func openSQLite(dsn string) (*backend, error) {
	st, err := sqlitestore.New(dsn)
	if err != nil {
		return nil, err
	}
	return &backend{
		store:     st,
		searchLog: audit.NewSQLiteSearchLogFromDB(st.DB()),
		sessions:  auth.NewSQLiteSessionStoreFromDB(st.DB()),
		durable:   true,
	}, nil
}

func sqliteStatus(dsn string) (string, error) {
	return sqlitestore.Status(dsn)
}
