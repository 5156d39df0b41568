package route

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrStopIsNotConstructed is returned when a Stop was not created via NewPendingStop or RestoreStop.
var ErrStopIsNotConstructed = errors.New("Stop must be created via NewPendingStop or RestoreStop")

// Stop is a single delivery in a courier's route.
//
// Business rules:
//   - sequence starts at 1 within a courier's route
//   - ETA is the cumulative travel time in minutes from the depot, never negative
//   - a freshly planned stop is pending (started=false, in_progress=false)
type Stop struct {
	id         kernel.UUID
	courierID  kernel.UUID
	orderID    int64
	sequence   int
	etaMinutes int
	startTime  time.Time
	started    bool
	inProgress bool
	guard      guard.ConstructorGuard
}

// NewPendingStop plans a stop that has not been picked up yet.
func NewPendingStop(courierID kernel.UUID, orderID int64, sequence, etaMinutes int, startTime time.Time) (*Stop, error) {
	return RestoreStop(kernel.NewUUID(), courierID, orderID, sequence, etaMinutes, startTime, false, false)
}

// RestoreStop rebuilds a stop loaded from the routes table.
func RestoreStop(
	id kernel.UUID,
	courierID kernel.UUID,
	orderID int64,
	sequence int,
	etaMinutes int,
	startTime time.Time,
	started bool,
	inProgress bool,
) (*Stop, error) {
	stop := &Stop{
		startTime:  startTime,
		started:    started,
		inProgress: inProgress,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		stop.setID(id),
		stop.setCourierID(courierID),
		stop.setOrderID(orderID),
		stop.setSequence(sequence),
		stop.setETA(etaMinutes),
	); err != nil {
		return nil, err
	}

	return stop, nil
}

func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

func (s *Stop) ID() kernel.UUID {
	return s.id
}

func (s *Stop) CourierID() kernel.UUID {
	return s.courierID
}

func (s *Stop) OrderID() int64 {
	return s.orderID
}

func (s *Stop) Sequence() int {
	return s.sequence
}

// ETAMinutes is the cumulative travel time from the depot to this stop.
func (s *Stop) ETAMinutes() int {
	return s.etaMinutes
}

func (s *Stop) StartTime() time.Time {
	return s.startTime
}

func (s *Stop) IsStarted() bool {
	return s.started
}

func (s *Stop) IsInProgress() bool {
	return s.inProgress
}

// IsPending reports whether the dispatcher may replace this stop.
func (s *Stop) IsPending() bool {
	return !s.started && !s.inProgress
}

func (s *Stop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Stop) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courier id", err)
	}
	s.courierID = id
	return nil
}

func (s *Stop) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not greater than 0", orderID))
	}
	s.orderID = orderID
	return nil
}

func (s *Stop) setSequence(sequence int) error {
	if sequence < 1 {
		return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is less than 1", sequence))
	}
	s.sequence = sequence
	return nil
}

func (s *Stop) setETA(minutes int) error {
	if minutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause("eta minutes", fmt.Errorf("%d is negative", minutes))
	}
	s.etaMinutes = minutes
	return nil
}
