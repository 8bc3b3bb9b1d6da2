package container

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"isoplan/adapters/excel"
	"isoplan/adapters/nucleardata"
	"isoplan/adapters/postgres"
	"isoplan/adapters/registry"
	"isoplan/adapters/resultstore"
	"isoplan/app"
	"isoplan/internal"
	"isoplan/internal/bateman"
	"isoplan/internal/config"
	"isoplan/internal/errors"
	"isoplan/internal/evaluator"
	"isoplan/internal/migration"
	"isoplan/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	NuclearData ports.NuclearDataPort
	Registry    ports.RouteRegistryPort
	Results     *resultstore.Memory

	// Services
	Planning *app.PlanningService

	// RegistrySource names where routes were loaded from.
	RegistrySource string
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// Init loads reference data and the route registry, then builds services.
func (c *Container) Init(ctx context.Context) error {
	if err := c.initNuclearData(); err != nil {
		return fmt.Errorf("failed to load nuclear data: %w", err)
	}
	if err := c.initRegistry(ctx); err != nil {
		return fmt.Errorf("failed to load route registry: %w", err)
	}
	c.initServices()

	c.Logger.Info("Container initialized (registry: %s)", c.RegistrySource)
	return nil
}

func (c *Container) initNuclearData() error {
	path := c.Config.Data.NuclearDataFile
	if path == "" {
		c.NuclearData = nucleardata.Builtin()
		return nil
	}
	table, err := nucleardata.LoadOverlay(path)
	if err != nil {
		return errors.Wrapf(err, "nuclear data overlay %s", path)
	}
	c.NuclearData = table
	c.Logger.Info("Nuclear data overlay loaded from %s", path)
	return nil
}

// initRegistry picks the registry: Postgres when configured, else a route
// file, else the embedded reference routes.
func (c *Container) initRegistry(ctx context.Context) error {
	if c.Config.Database.Enabled() {
		db, err := postgres.Open(ctx, c.Config.Database.URL)
		if err != nil {
			return errors.WithCode(errors.CodeDatabaseError, err)
		}
		c.DB = db
		if c.Config.Database.Migrate {
			if err := c.migrate(ctx); err != nil {
				return err
			}
		}
		c.Registry = postgres.NewRouteRegistry(db)
		c.RegistrySource = "postgres"
		return nil
	}

	path := c.Config.Data.RoutesFile
	if path == "" {
		reg, err := registry.Default()
		if err != nil {
			return err
		}
		c.Registry = reg
		c.RegistrySource = "embedded"
		return nil
	}

	reg, err := LoadRoutesFile(path)
	if err != nil {
		return err
	}
	c.Registry = reg
	c.RegistrySource = path
	return nil
}

// migrate provisions the routes table, seeding it from the embedded routes.
func (c *Container) migrate(ctx context.Context) error {
	seed, err := registry.Default()
	if err != nil {
		return err
	}
	routes, err := seed.List(ctx)
	if err != nil {
		return err
	}
	records := make([]registry.Record, len(routes))
	for i, d := range routes {
		records[i] = registry.FromDescriptor(d)
	}
	runner := migration.NewRunner(records...)
	if err := runner.Run(ctx, c.DB); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	c.Logger.Info("Database migrations applied (version %s)", runner.Version())
	return nil
}

// LoadRoutesFile reads a YAML, xlsx or csv route registry.
func LoadRoutesFile(path string) (*registry.Memory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return registry.LoadYAML(path)
	case ".xlsx", ".csv":
		return excel.LoadRegistry(path)
	}
	return nil, errors.InvalidInput("unsupported route file " + path)
}

func (c *Container) initServices() {
	c.Results = resultstore.NewMemory(resultstore.DefaultCapacity)
	opts := app.ServiceOptions{
		Evaluator: evaluator.Options{
			MonteCarloSamples: c.Config.Engine.MonteCarloSamples,
			MonteCarloSeed:    c.Config.Engine.MonteCarloSeed,
		},
		Solver:        bateman.Options{MaxSteps: c.Config.Engine.EulerMaxSteps},
		BatchCapacity: c.Config.Engine.BatchConcurrency,
	}
	c.Planning = app.NewPlanningService(c.Registry, c.NuclearData, c.Results, opts, c.Logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
