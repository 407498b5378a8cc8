// Package migrations embeds the versioned PostgreSQL schema applied by
// cmd/migrate and by repository tests.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files at its root.
//
//go:embed *.sql
var FS embed.FS
