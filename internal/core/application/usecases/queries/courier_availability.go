package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// CourierAvailability answers the dispatch cycle's fleet questions. Every call
// goes to the store: idleness changes while couriers ride, so nothing is cached.
type CourierAvailability struct {
	couriers ports.CourierRepository
}

func NewCourierAvailability(couriers ports.CourierRepository) CourierAvailability {
	return CourierAvailability{couriers: couriers}
}

// Fleet returns the active couriers.
func (a CourierAvailability) Fleet(ctx context.Context) ([]kernel.UUID, error) {
	return a.couriers.ListActive(ctx)
}

// Idle keeps the couriers of fleet that are not riding, in fleet order.
func (a CourierAvailability) Idle(ctx context.Context, fleet []kernel.UUID) ([]kernel.UUID, error) {
	if len(fleet) == 0 {
		return []kernel.UUID{}, nil
	}
	return a.couriers.FilterIdle(ctx, fleet)
}
