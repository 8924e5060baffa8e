package postgres

import "embed"

// MigrationsFS embeds the goose migration scripts so the binary can run
// them without the source tree present.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migration scripts inside MigrationsFS.
const MigrationsDir = "migrations"
