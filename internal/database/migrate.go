package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// newProvider returns a goose provider bound to db and the migrations of
// driver. Providers carry their own dialect and file system, so nothing in
// goose's package state is touched.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch driver {
	case DriverMySQL:
		dialect, dir = goose.DialectMySQL, "migrations/mysql"
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	default:
		return nil, fmt.Errorf("database: no migrations for driver %q", driver)
	}
	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Migrate applies every pending migration for the given driver and logs
// each one it ran.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) error {
	p, err := newProvider(db, driver)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			slog.String("file", r.Source.Path),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// MigrationVersion reports the schema version currently applied.
func MigrationVersion(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	p, err := newProvider(db, driver)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
