package migrations

import "embed"

// FS contains embedded SQLite migrations for communication storage.
//
//go:embed *.sql
var FS embed.FS
