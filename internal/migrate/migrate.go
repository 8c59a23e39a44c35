// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/and161185/taskhive/migrations"
)

// Driver names accepted by Up.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Up runs all pending migrations of the driver's dialect against db and
// returns the number of migrations applied.
func Up(ctx context.Context, driver string, db *sql.DB) (int, error) {
	p, err := provider(driver, db)
	if err != nil {
		return 0, err
	}
	res, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return len(res), nil
}

// Version reports the current schema version.
func Version(ctx context.Context, driver string, db *sql.DB) (int64, error) {
	p, err := provider(driver, db)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

func provider(driver string, db *sql.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goose.DialectPostgres
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	dir, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, dir)
}
