package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetReadyOrdersQueryIsNotConstructed = errors.New(
		"GetReadyOrdersQuery must be created via NewGetReadyOrdersQuery constructor",
	)
)

// GetReadyOrdersQuery lists the orders the next dispatch cycle would consider.
//
// Example:
//
//	query, err := NewGetReadyOrdersQuery(order.ReadyStatuses())
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.Handle(ctx, query)
type GetReadyOrdersQuery struct {
	statuses []order.Status
	guard    guard.ConstructorGuard
}

// NewGetReadyOrdersQuery validates statuses; an empty set means order.ReadyStatuses().
func NewGetReadyOrdersQuery(statuses []order.Status) (GetReadyOrdersQuery, error) {
	if len(statuses) == 0 {
		statuses = order.ReadyStatuses()
	}
	for _, s := range statuses {
		if err := s.Validate(); err != nil {
			return GetReadyOrdersQuery{}, err
		}
	}
	return GetReadyOrdersQuery{statuses: statuses, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetReadyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetReadyOrdersQueryIsNotConstructed)
}

func (q GetReadyOrdersQuery) Statuses() []order.Status {
	return q.statuses
}

// GetReadyOrdersQueryResponse is one ready order. Address is empty when the order
// has no address row.
type GetReadyOrdersQueryResponse struct {
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	Priority  bool      `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	Address   string    `json:"address"`
	Geocoded  bool      `json:"geocoded"`
}
