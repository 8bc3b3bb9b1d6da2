package migration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/adapters/postgres"
	"isoplan/adapters/registry"
)

func TestRunnerVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", NewRunner().Version())
}

func TestRunIntegration(t *testing.T) {
	dsn := os.Getenv("ISOPLAN_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ISOPLAN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	seed := registry.Record{
		ID: "it-mig-co60", Target: "Co-59", Product: "Co-60", Reaction: "(n,γ)",
		CrossSectionBarns: 37.2, HalfLifeDays: 1925.28, Regulatory: "standard",
	}
	runner := NewRunner(seed)
	require.NoError(t, runner.Run(ctx, db))
	// idempotent
	require.NoError(t, runner.Run(ctx, db))

	n, err := postgres.Count(ctx, db)
	require.NoError(t, err)
	assert.Positive(t, n)
}
