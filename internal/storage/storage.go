// Package storage opens a configured backend, applies migrations and wires
// the repositories and the login limiter over it.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/limiter"
	"github.com/and161185/taskhive/internal/migrate"
	"github.com/and161185/taskhive/internal/repository"
	"github.com/and161185/taskhive/internal/repository/postgres"
	"github.com/and161185/taskhive/internal/repository/sqlite"
)

// Backend is an opened store.
type Backend struct {
	Driver  string
	Repos   repository.Set
	Limiter limiter.Limiter
	// Ping checks that the store is reachable.
	Ping func(ctx context.Context) error

	closers []func()
}

// Close releases every resource in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Options tune Open.
type Options struct {
	Policy limiter.Policy
	// SkipMigrations leaves the schema untouched.
	SkipMigrations bool
	Logger         *zap.Logger
}

// Open connects to driver at dsn and runs pending migrations.
func Open(ctx context.Context, driver, dsn string, opt Options) (*Backend, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	switch driver {
	case migrate.DriverPostgres:
		return openPostgres(ctx, dsn, opt, log)
	case migrate.DriverSQLite:
		return openSQLite(ctx, dsn, opt, log)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
}

func openPostgres(ctx context.Context, dsn string, opt Options, log *zap.Logger) (*Backend, error) {
	db, err := postgres.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	b := &Backend{
		Driver:  migrate.DriverPostgres,
		Repos:   postgres.NewSet(db),
		Limiter: limiter.NewPG(db.Pool, opt.Policy),
		Ping:    db.PgxPool().Ping,
		closers: []func(){db.Close},
	}
	if !opt.SkipMigrations {
		sqlDB := stdlib.OpenDBFromPool(db.PgxPool())
		b.closers = append(b.closers, func() { _ = sqlDB.Close() })
		n, err := migrate.Up(ctx, migrate.DriverPostgres, sqlDB)
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info("migrations applied", zap.String("driver", b.Driver), zap.Int("count", n))
	}
	return b, nil
}

func openSQLite(ctx context.Context, dsn string, opt Options, log *zap.Logger) (*Backend, error) {
	db, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	b := &Backend{
		Driver:  migrate.DriverSQLite,
		Repos:   sqlite.NewSet(db),
		Limiter: limiter.NewSQLite(db.X, opt.Policy),
		Ping:    db.X.PingContext,
		closers: []func(){db.Close},
	}
	if !opt.SkipMigrations {
		n, err := migrate.Up(ctx, migrate.DriverSQLite, db.X.DB)
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info("migrations applied", zap.String("driver", b.Driver), zap.Int("count", n))
	}
	return b, nil
}
