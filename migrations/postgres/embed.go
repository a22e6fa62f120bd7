// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contiene las migraciones (*_up.sql / *_down.sql) en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
