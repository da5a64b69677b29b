// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL that creates the library snapshot tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS
