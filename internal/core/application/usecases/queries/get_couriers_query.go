// Package queries contains read operations for dispatch state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models shaped for the HTTP API and the operators' dashboard.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCouriersQueryIsNotConstructed = errors.New(
		"GetCouriersQuery must be created via NewGetCouriersQuery constructor",
	)
)

// GetCouriersQuery lists the couriers together with their availability.
//
// Example:
//
//	query := NewGetCouriersQuery(true)
//	handler := NewGetCouriersQueryHandler(db)
//
//	couriers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve couriers: %w", err)
//	}
//
//	for _, courier := range couriers {
//	    fmt.Printf("%s idle=%t\n", courier.Name, courier.Idle)
//	}
type GetCouriersQuery struct {
	activeOnly bool
	guard      guard.ConstructorGuard
}

// NewGetCouriersQuery creates the query. activeOnly hides couriers off shift.
func NewGetCouriersQuery(activeOnly bool) GetCouriersQuery {
	return GetCouriersQuery{activeOnly: activeOnly, guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetCouriersQueryIsNotConstructed)
}

func (q GetCouriersQuery) ActiveOnly() bool {
	return q.activeOnly
}

// GetCouriersQueryResponse is one courier in the read model. A courier is idle
// when none of its route rows is in progress.
type GetCouriersQueryResponse struct {
	ID      kernel.UUID `json:"id"`
	Name    string      `json:"name"`
	Active  bool        `json:"active"`
	Idle    bool        `json:"idle"`
	Pending int         `json:"pending_stops"`
}
