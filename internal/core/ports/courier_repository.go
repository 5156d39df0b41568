package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository answers fleet and availability questions. Results are never cached.
type CourierRepository interface {
	// ListActive returns the active fleet in a stable order.
	ListActive(ctx context.Context) ([]kernel.UUID, error)

	// FilterIdle keeps the couriers without an in-progress route row, preserving input order.
	FilterIdle(ctx context.Context, couriers []kernel.UUID) ([]kernel.UUID, error)
}
