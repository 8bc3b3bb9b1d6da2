package main

import (
	"context"
	"log"
	"os"

	"isoplan/adapters/postgres"
	"isoplan/adapters/registry"
	"isoplan/internal/container"
	"isoplan/internal/migration"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [routes_file]")
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	db, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema version %s applied", runner.Version())

	if len(os.Args) < 3 {
		return
	}

	routesFile := os.Args[2]
	reg, err := container.LoadRoutesFile(routesFile)
	if err != nil {
		log.Fatalf("Failed to load routes from %s: %v", routesFile, err)
	}
	routes, err := reg.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list routes: %v", err)
	}

	records := make([]registry.Record, len(routes))
	for i, d := range routes {
		records[i] = registry.FromDescriptor(d)
	}
	inserted, err := postgres.Insert(ctx, db, records)
	if err != nil {
		log.Fatalf("Failed to insert routes: %v", err)
	}

	log.Printf("Migration complete: %d routes inserted, %d already present", inserted, len(records)-inserted)
}
