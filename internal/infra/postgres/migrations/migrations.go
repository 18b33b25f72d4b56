// Package migrations holds the schema as bun migrations. Each file registers one
// migration and bun derives its name from the file name.
package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// sqlMigration runs up and down statements verbatim.
func sqlMigration(up, down string) (migrate.MigrationFunc, migrate.MigrationFunc) {
	return func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, up)
			return err
		}, func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, down)
			return err
		}
}
