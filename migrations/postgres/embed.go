// Package postgres holds the PostgreSQL schema migrations.
package postgres

import "embed"

// Files contains the PostgreSQL migration scripts, applied in version order.
//
//go:embed *.up.sql
var Files embed.FS
