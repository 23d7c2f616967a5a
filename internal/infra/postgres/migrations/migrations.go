package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change; files are named <timestamp>_<name>.go
// because bun derives migration names from the registering file.
var Migrations = migrate.NewMigrations()
