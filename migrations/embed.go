// Package migrations embeds the SQL migration files for the migrate CLI.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
