// Package migrations holds the SQLite schema migrations.
package migrations

import "embed"

// Files contains the SQLite migration scripts, applied in version order.
//
//go:embed *.sql
var Files embed.FS
