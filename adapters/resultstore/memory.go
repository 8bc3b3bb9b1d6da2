// Package resultstore keeps finished evaluations for reports and export.
package resultstore

import (
	"context"
	"sync"

	"isoplan/domain/core"
	"isoplan/ports"
)

// DefaultCapacity bounds the number of retained evaluations.
const DefaultCapacity = 10000

// Memory is a bounded in-process store. The oldest evaluation is evicted
// once capacity is reached.
type Memory struct {
	mu       sync.RWMutex
	byID     map[core.EvaluationID]ports.Evaluation
	order    []core.EvaluationID
	capacity int
}

var _ ports.ResultSinkPort = (*Memory)(nil)

// NewMemory creates a store; capacity <= 0 selects DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		byID:     make(map[core.EvaluationID]ports.Evaluation),
		capacity: capacity,
	}
}

func (m *Memory) Store(ctx context.Context, ev ports.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := ev.Result.EvaluationID
	if id.String() == "" {
		return core.NewInputError("evaluation_id", "empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[id]; !exists {
		if len(m.order) >= m.capacity {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.byID, oldest)
		}
		m.order = append(m.order, id)
	}
	m.byID[id] = ev
	return nil
}

func (m *Memory) Get(ctx context.Context, id core.EvaluationID) (ports.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return ports.Evaluation{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.byID[id]
	if !ok {
		return ports.Evaluation{}, core.NewEvaluationNotFoundError(id.String())
	}
	return ev, nil
}

// List returns evaluations oldest first.
func (m *Memory) List(ctx context.Context) ([]ports.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.Evaluation, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

// Len reports the number of retained evaluations.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
