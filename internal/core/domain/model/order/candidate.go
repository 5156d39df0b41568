package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrCandidateIsNotConstructed is returned when a Candidate was not created via NewCandidate.
var ErrCandidateIsNotConstructed = errors.New("Candidate must be created via NewCandidate constructor")

// Candidate is a ready order awaiting assignment.
//
// Invariants:
//   - order id is positive
//   - pizza count is not negative
//   - a candidate without coordinates is never handed to the route builder
type Candidate struct {
	orderID       int64
	address       address.Address
	priority      bool
	createdAt     time.Time
	pizzas        int
	isConstructed bool
}

// NewCandidate validates the order attributes read from the store.
func NewCandidate(
	orderID int64,
	addr address.Address,
	priority bool,
	createdAt time.Time,
	pizzas int,
) (*Candidate, error) {
	if orderID <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not greater than 0", orderID))
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if pizzas < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("pizzas", fmt.Errorf("%d is negative", pizzas))
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("created at")
	}

	return &Candidate{
		orderID:       orderID,
		address:       addr,
		priority:      priority,
		createdAt:     createdAt,
		pizzas:        pizzas,
		isConstructed: true,
	}, nil
}

func (c *Candidate) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCandidateIsNotConstructed
	}
	return nil
}

func (c *Candidate) OrderID() int64 {
	return c.orderID
}

func (c *Candidate) Address() address.Address {
	return c.address
}

// IsPriority reports the explicit priority flag set by the kitchen.
func (c *Candidate) IsPriority() bool {
	return c.priority
}

func (c *Candidate) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Candidate) Pizzas() int {
	return c.pizzas
}

// WaitSeconds is the time the order has been waiting at now, never negative.
func (c *Candidate) WaitSeconds(now time.Time) int {
	wait := now.Sub(c.createdAt)
	if wait < 0 {
		return 0
	}
	return int(wait / time.Second)
}

func (c *Candidate) Coordinates() (kernel.Coordinates, bool) {
	return c.address.Coordinates()
}

func (c *Candidate) IsGeocoded() bool {
	return c.address.IsGeocoded()
}

// Locate attaches resolved coordinates to the candidate's address.
func (c *Candidate) Locate(coordinates kernel.Coordinates) error {
	located, err := c.address.WithCoordinates(coordinates)
	if err != nil {
		return err
	}
	c.address = located
	return nil
}
