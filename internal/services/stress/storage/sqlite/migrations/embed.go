package migrations

import "embed"

// FS contains embedded SQLite migrations for stress storage.
//
//go:embed *.sql
var FS embed.FS
