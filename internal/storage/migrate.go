package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var blobTableMigrations embed.FS

// blobMigrationsTable keeps golang-migrate's bookkeeping apart from the blobs
// table, whose keys are collection names.
const blobMigrationsTable = "blob_schema_migrations"

// migrateBlobTable creates or upgrades the blobs table in the sqlite file at
// dbPath and returns the table version it ends at. This is the SQL layout of
// the medium; the JSON layout inside the blobs is versioned by schema.go.
func migrateBlobTable(dbPath string) (uint, error) {
	// Closing the migrator closes its connection, so it gets its own.
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open blob table migration connection: %w", err)
	}
	defer conn.Close()

	target, err := sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: blobMigrationsTable})
	if err != nil {
		return 0, fmt.Errorf("blob table migration driver: %w", err)
	}
	source, err := iofs.New(blobTableMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("blob table migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("blob table migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate blob table: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read blob table version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("blob table left dirty at version %d", version)
	}
	return version, nil
}
