package migration

import (
	"context"
	"fmt"

	"isoplan/adapters/postgres"
	"isoplan/adapters/registry"
	"isoplan/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	seed    []registry.Record
}

// NewRunner creates a migration runner. Seed records are inserted only into
// an empty routes table.
func NewRunner(seed ...registry.Record) *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		seed:    seed,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRoutesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create production_routes table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.insertDefaultRoutes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default routes")
	}

	return nil
}

func (r *MigrationRunner) createRoutesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, postgres.Schema)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_routes_product ON production_routes(product)",
		"CREATE INDEX IF NOT EXISTS idx_routes_target ON production_routes(target)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return fmt.Errorf("%s: %w", idxSQL, err)
		}
	}
	return nil
}

func (r *MigrationRunner) insertDefaultRoutes(ctx context.Context, db *sqlx.DB) error {
	if len(r.seed) == 0 {
		return nil
	}
	n, err := postgres.Count(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = postgres.Insert(ctx, db, r.seed)
	return err
}

var _ Migrator = (*MigrationRunner)(nil)
