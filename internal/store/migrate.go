package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded migration files for a driver.
func Migrations(driver Driver) (fs.FS, error) {
	switch driver {
	case DriverPostgres:
		return fs.Sub(migrationsFS, "migrations/postgres")
	case DriverSQLite:
		return fs.Sub(migrationsFS, "migrations/sqlite")
	}
	return nil, fmt.Errorf("no migrations for driver %q", driver)
}

// NewMigrator builds a goose provider over the embedded migrations.
func NewMigrator(db *sql.DB, driver Driver) (*goose.Provider, error) {
	fsys, err := Migrations(driver)
	if err != nil {
		return nil, err
	}

	dialect := goose.DialectSQLite3
	if driver == DriverPostgres {
		dialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending migration. It is safe to call on every start.
func Migrate(ctx context.Context, db *sql.DB, driver Driver) error {
	provider, err := NewMigrator(db, driver)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
