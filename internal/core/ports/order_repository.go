package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// ReadyOrder is an order row selected for dispatch, before its address is loaded.
type ReadyOrder struct {
	OrderID   int64
	AddressID *int64
	Priority  bool
	CreatedAt time.Time
}

// OrderReader reads the orders eligible for a dispatch cycle.
type OrderReader interface {
	// FindReady returns orders whose status is in statuses and that are not part of
	// a started or in-progress route, ordered by explicit priority descending and
	// creation time ascending.
	FindReady(ctx context.Context, statuses []order.Status) ([]ReadyOrder, error)
}

// PizzaCounter sums the pizza quantity of an order's top-level items.
type PizzaCounter interface {
	CountPizzas(ctx context.Context, orderID int64) (int, error)
}
