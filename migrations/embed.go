// Package migrations embeds the SQL schema files for each database backend.
package migrations

import "embed"

// FS holds one directory of NNN_name.sql files per backend.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
