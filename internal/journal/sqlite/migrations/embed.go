// Package migrations embeds SQLite schema migrations for the roll journal.
package migrations

import "embed"

// FS contains embedded SQLite migrations for roll journal storage.
//
//go:embed *.sql
var FS embed.FS
