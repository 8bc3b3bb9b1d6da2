package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"isoplan/adapters/registry"
	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/ports"
)

// Schema is the table layout RouteRegistry reads. The registry itself never
// writes; Insert and the migration runner provision the table.
const Schema = `
CREATE TABLE IF NOT EXISTS production_routes (
	id                              TEXT PRIMARY KEY,
	target                          TEXT NOT NULL,
	product                         TEXT NOT NULL,
	reaction                        TEXT NOT NULL,
	threshold_mev                   DOUBLE PRECISION NOT NULL DEFAULT 0,
	cross_section_barns             DOUBLE PRECISION NOT NULL DEFAULT 0,
	half_life_days                  DOUBLE PRECISION NOT NULL,
	chemically_separable            BOOLEAN NOT NULL DEFAULT TRUE,
	carrier_added_acceptable        BOOLEAN NOT NULL DEFAULT TRUE,
	impurities                      TEXT[] NOT NULL DEFAULT '{}',
	regulatory                      TEXT NOT NULL DEFAULT 'standard',
	burnup_cross_section_barns      DOUBLE PRECISION NOT NULL DEFAULT 0,
	category                        TEXT,
	data_quality                    TEXT,
	generator_parent                TEXT,
	generator_parent_half_life_days DOUBLE PRECISION,
	generator_branching_ratio       DOUBLE PRECISION,
	notes                           TEXT
)`

const selectRoutes = `
	SELECT id, target, product, reaction, threshold_mev, cross_section_barns,
	       half_life_days, chemically_separable, carrier_added_acceptable, impurities,
	       regulatory, burnup_cross_section_barns,
	       COALESCE(category, '') AS category,
	       COALESCE(data_quality, '') AS data_quality,
	       COALESCE(generator_parent, '') AS generator_parent,
	       COALESCE(generator_parent_half_life_days, 0) AS generator_parent_half_life_days,
	       COALESCE(generator_branching_ratio, 0) AS generator_branching_ratio,
	       COALESCE(notes, '') AS notes
	FROM production_routes`

// routeRow adds the array column to the shared record shape.
type routeRow struct {
	registry.Record
	Impurities pq.StringArray `db:"impurities"`
}

func (r routeRow) descriptor() (route.Descriptor, error) {
	rec := r.Record
	rec.Impurities = []string(r.Impurities)
	return rec.Descriptor()
}

// RouteRegistry implements RouteRegistryPort over PostgreSQL, read-only
type RouteRegistry struct {
	db *sqlx.DB
}

// NewRouteRegistry creates a PostgreSQL route registry
func NewRouteRegistry(db *sqlx.DB) *RouteRegistry {
	return &RouteRegistry{db: db}
}

// Open connects with lib/pq and verifies the connection
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Get retrieves a route by id
func (r *RouteRegistry) Get(ctx context.Context, id core.RouteID) (route.Descriptor, error) {
	var row routeRow
	err := r.db.GetContext(ctx, &row, selectRoutes+` WHERE id = $1`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return route.Descriptor{}, core.NewRouteNotFoundError(string(id))
	}
	if err != nil {
		return route.Descriptor{}, fmt.Errorf("failed to load route %s: %w", id, err)
	}
	return row.descriptor()
}

// ByProduct lists routes yielding product
func (r *RouteRegistry) ByProduct(ctx context.Context, product string) ([]route.Descriptor, error) {
	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, selectRoutes+` WHERE product = $1 ORDER BY id`, product); err != nil {
		return nil, fmt.Errorf("failed to list routes for %s: %w", product, err)
	}
	return descriptors(rows)
}

// List returns every route ordered by id
func (r *RouteRegistry) List(ctx context.Context) ([]route.Descriptor, error) {
	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, selectRoutes+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return descriptors(rows)
}

func descriptors(rows []routeRow) ([]route.Descriptor, error) {
	out := make([]route.Descriptor, 0, len(rows))
	for _, row := range rows {
		d, err := row.descriptor()
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", row.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

const insertRoute = `
	INSERT INTO production_routes (
		id, target, product, reaction, threshold_mev, cross_section_barns,
		half_life_days, chemically_separable, carrier_added_acceptable, impurities,
		regulatory, burnup_cross_section_barns, category, data_quality,
		generator_parent, generator_parent_half_life_days, generator_branching_ratio, notes
	) VALUES (
		:id, :target, :product, :reaction, :threshold_mev, :cross_section_barns,
		:half_life_days, :chemically_separable, :carrier_added_acceptable, :impurities,
		:regulatory, :burnup_cross_section_barns, :category, :data_quality,
		:generator_parent, :generator_parent_half_life_days, :generator_branching_ratio, :notes
	) ON CONFLICT (id) DO NOTHING`

// Insert writes records in one transaction, skipping IDs already present.
// It returns the number of rows inserted.
func Insert(ctx context.Context, db *sqlx.DB, records []registry.Record) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, rec := range records {
		row := routeRow{Record: rec, Impurities: pq.StringArray(rec.Impurities)}
		if row.Impurities == nil {
			row.Impurities = pq.StringArray{}
		}
		res, err := tx.NamedExecContext(ctx, insertRoute, row)
		if err != nil {
			return 0, fmt.Errorf("failed to insert route %s: %w", rec.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit routes: %w", err)
	}
	return inserted, nil
}

// Count returns the number of stored routes
func Count(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM production_routes`); err != nil {
		return 0, fmt.Errorf("failed to count routes: %w", err)
	}
	return n, nil
}

// Ensure RouteRegistry implements RouteRegistryPort
var _ ports.RouteRegistryPort = (*RouteRegistry)(nil)
