package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// RouteRepository persists route stops. Only pending stops are ever deleted.
type RouteRepository interface {
	// Add inserts a pending stop.
	Add(ctx context.Context, stop *route.Stop) error

	// DeletePending removes the courier's stops that are neither started nor in progress.
	DeletePending(ctx context.Context, courierID kernel.UUID) (int64, error)

	// DeletePendingForOrders removes pending stops of any courier for the given orders.
	DeletePendingForOrders(ctx context.Context, orderIDs []int64) (int64, error)

	// LockedOrders returns the subset of orderIDs that have a started or in-progress stop.
	LockedOrders(ctx context.Context, orderIDs []int64) ([]int64, error)

	// ListByCourier returns the courier's pending and in-progress stops ordered by sequence.
	ListByCourier(ctx context.Context, courierID kernel.UUID) ([]*route.Stop, error)
}
