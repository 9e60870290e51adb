// Package migrations embeds the SQL schema for the SQLite preference backend.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
