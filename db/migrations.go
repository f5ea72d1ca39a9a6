// Package db embeds the SQL schema migrations applied by goose at startup.
package db

import "embed"

// Migrations holds the goose migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
