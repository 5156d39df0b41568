package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCourierRoutesQueryIsNotConstructed = errors.New(
		"GetCourierRoutesQuery must be created via NewGetCourierRoutesQuery constructor",
	)
)

// GetCourierRoutesQuery reads the stops currently planned for one courier.
type GetCourierRoutesQuery struct {
	courierID kernel.UUID
	guard     guard.ConstructorGuard
}

// NewGetCourierRoutesQuery parses the courier id.
func NewGetCourierRoutesQuery(courierID string) (GetCourierRoutesQuery, error) {
	id, err := kernel.UUIDFromString(courierID)
	if err != nil {
		return GetCourierRoutesQuery{}, err
	}
	return GetCourierRoutesQuery{courierID: id, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCourierRoutesQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierRoutesQueryIsNotConstructed)
}

func (q GetCourierRoutesQuery) CourierID() kernel.UUID {
	return q.courierID
}

// GetCourierRoutesQueryResponse is one stop of the courier's route. ArrivesAt is
// the dispatch time plus the cumulative ETA.
type GetCourierRoutesQueryResponse struct {
	StopID     kernel.UUID `json:"stop_id"`
	OrderID    int64       `json:"order_id"`
	Sequence   int         `json:"sequence"`
	ETAMinutes int         `json:"eta_minutes"`
	StartTime  time.Time   `json:"start_time"`
	ArrivesAt  time.Time   `json:"arrives_at"`
	Started    bool        `json:"started"`
	InProgress bool        `json:"in_progress"`
}
