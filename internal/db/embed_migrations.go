// Package db holds the SQL schema. The migrate runner and the tests apply it.
package db

import "embed"

//go:embed migrations/*.sql
var MigrationFS embed.FS
