package registry

import (
	"context"
	"fmt"
	"sync"

	"isoplan/domain/core"
	"isoplan/domain/route"
	"isoplan/ports"
)

// Memory is an in-process registry preserving insertion order.
type Memory struct {
	mu    sync.RWMutex
	byID  map[core.RouteID]route.Descriptor
	order []core.RouteID
}

var _ ports.RouteRegistryPort = (*Memory)(nil)

// NewMemory creates a registry holding routes.
func NewMemory(routes ...route.Descriptor) (*Memory, error) {
	m := &Memory{byID: make(map[core.RouteID]route.Descriptor)}
	for _, d := range routes {
		if err := m.Add(d); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add registers a descriptor. IDs must be unique.
func (m *Memory) Add(in route.Descriptor) error {
	d, err := route.NewDescriptor(in)
	if err != nil {
		return fmt.Errorf("route %q: %w", in.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[d.ID]; exists {
		return core.NewInputError("id", fmt.Sprintf("duplicate route %s", d.ID))
	}
	m.byID[d.ID] = d
	m.order = append(m.order, d.ID)
	return nil
}

func (m *Memory) Get(ctx context.Context, id core.RouteID) (route.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return route.Descriptor{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[id]
	if !ok {
		return route.Descriptor{}, core.NewRouteNotFoundError(string(id))
	}
	return d, nil
}

// ByProduct returns every route yielding product, in registry order.
func (m *Memory) ByProduct(ctx context.Context, product string) ([]route.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []route.Descriptor
	for _, id := range m.order {
		if d := m.byID[id]; d.Product == product {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) List(ctx context.Context) ([]route.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]route.Descriptor, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

// Len is the number of routes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
