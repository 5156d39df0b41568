package ports

import (
	"context"

	"dispatch/internal/core/domain/model/vrp"
)

// RouteOptimizer solves a VRP request. Transient failures are retried inside the
// implementation; a returned error is final for the current cycle.
type RouteOptimizer interface {
	Optimize(ctx context.Context, request vrp.Request, apiKey string) (vrp.Solution, error)
}
