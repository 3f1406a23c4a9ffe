// Package migrations embeds the goose SQL migrations, one directory per
// dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Dir returns the embedded directory holding the migrations for a goose
// dialect name.
func Dir(gooseDialect string) string {
	if gooseDialect == "sqlite3" || gooseDialect == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
