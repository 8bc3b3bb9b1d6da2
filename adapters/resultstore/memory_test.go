package resultstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoplan/domain/core"
	"isoplan/domain/verdict"
	"isoplan/ports"
)

func evaluation(id string) ports.Evaluation {
	return ports.Evaluation{Result: verdict.Result{EvaluationID: core.EvaluationID(id), RouteID: "r"}}
}

func TestStoreAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	require.NoError(t, m.Store(ctx, evaluation("a")))
	require.NoError(t, m.Store(ctx, evaluation("b")))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, core.EvaluationID("a"), got.Result.EvaluationID)

	_, err = m.Get(ctx, "missing")
	assert.True(t, core.IsNotFoundError(err))

	assert.True(t, core.IsInvalidInput(m.Store(ctx, evaluation(""))))
}

func TestCapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Store(ctx, evaluation(id)))
	}
	// re-storing an existing id does not evict
	require.NoError(t, m.Store(ctx, evaluation("c")))

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, core.EvaluationID("b"), list[0].Result.EvaluationID)
	assert.Equal(t, core.EvaluationID("c"), list[1].Result.EvaluationID)
	assert.Equal(t, 2, m.Len())
}
