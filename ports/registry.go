package ports

import (
	"context"

	"isoplan/domain/core"
	"isoplan/domain/route"
)

// RouteRegistryPort supplies route descriptors. Implementations are read-only
// from the planner's point of view.
type RouteRegistryPort interface {
	Get(ctx context.Context, id core.RouteID) (route.Descriptor, error)
	ByProduct(ctx context.Context, product string) ([]route.Descriptor, error)
	List(ctx context.Context) ([]route.Descriptor, error)
}
