// Package migrations applies the embedded SQL schema migrations with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/dexhub/hr-portal/pkg/logger"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Runner wraps a golang-migrate instance bound to one database URL.
type Runner struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// New opens a runner for databaseURL (postgres:// scheme).
func New(databaseURL string, log *logger.Logger) (*Runner, error) {
	source, err := iofs.New(sqlFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	return &Runner{m: m, log: log.Component("migrations")}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up() error {
	if err := r.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	r.logVersion("Migrations applied")
	return nil
}

// Down rolls back the given number of migrations. steps <= 0 rolls back everything.
func (r *Runner) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = r.m.Down()
	} else {
		err = r.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	r.logVersion("Migrations rolled back")
	return nil
}

// Version returns the current schema version. A database without migrations
// reports version 0.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the source and database handles.
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (r *Runner) logVersion(msg string) {
	version, dirty, err := r.Version()
	if err != nil {
		r.log.Warn().Err(err).Msg(msg)
		return
	}
	r.log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg(msg)
}
