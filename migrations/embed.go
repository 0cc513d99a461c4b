// Package migrations provides embedded migration SQL files, one directory
// per SQL dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql duckdb/*.sql
var FS embed.FS
