package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for raffle storage.
//
//go:embed *.sql
var FS embed.FS
