package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/geocoding"
	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AddressResolver turns addresses into coordinates; see geocoding.Resolver.
type AddressResolver interface {
	Resolve(ctx context.Context, addr address.Address, apiKey string) (kernel.Coordinates, error)
	ResolveText(ctx context.Context, text string, apiKey string) (kernel.Coordinates, error)
}

// CandidateCollector gathers the orders that can be routed in this cycle.
//
// An order is a candidate when its status is in the requested set, it is not part
// of a started or in-progress route and its address resolves to coordinates.
// Orders without an address, or whose address cannot be resolved, are logged,
// reported as UnresolvedOrder and left for a later cycle.
type CandidateCollector struct {
	orders    ports.OrderReader
	pizzas    ports.PizzaCounter
	addresses ports.AddressRepository
	resolver  AddressResolver
	scorer    services.PriorityScorer
	logger    *slog.Logger
}

func NewCandidateCollector(
	orders ports.OrderReader,
	pizzas ports.PizzaCounter,
	addresses ports.AddressRepository,
	resolver AddressResolver,
	scorer services.PriorityScorer,
	logger *slog.Logger,
) *CandidateCollector {
	return &CandidateCollector{
		orders:    orders,
		pizzas:    pizzas,
		addresses: addresses,
		resolver:  resolver,
		scorer:    scorer,
		logger:    logger.With("component", "candidate_collector"),
	}
}

// Reasons an order is reported as unresolved.
const (
	UnresolvedNoAddress       = "no_address"
	UnresolvedAddressNotFound = "address_not_found"
	UnresolvedNotGeocoded     = "not_geocoded"
)

// UnresolvedOrder is a ready order left out of the cycle for lack of coordinates.
type UnresolvedOrder struct {
	OrderID int64  `json:"order_id"`
	Address string `json:"address,omitempty"`
	Reason  string `json:"reason"`
}

// Collect returns geocoded candidates ranked at now, most urgent first, and the
// ready orders that could not be located.
func (c *CandidateCollector) Collect(
	ctx context.Context,
	statuses []order.Status,
	apiKey string,
	now time.Time,
) ([]services.RankedCandidate, []UnresolvedOrder, error) {
	ready, err := c.orders.FindReady(ctx, statuses)
	if err != nil {
		return nil, nil, fmt.Errorf("find ready orders: %w", err)
	}

	candidates := make([]*order.Candidate, 0, len(ready))
	unresolved := []UnresolvedOrder{}
	for _, r := range ready {
		candidate, skipped, err := c.candidate(ctx, r, apiKey)
		if err != nil {
			return nil, nil, err
		}
		if skipped != nil {
			unresolved = append(unresolved, *skipped)
		}
		if candidate != nil {
			candidates = append(candidates, candidate)
		}
	}

	return c.scorer.Order(candidates, now), unresolved, nil
}

// candidate returns a nil candidate without error when the order has to be
// skipped; skipped is set when the skip is for lack of coordinates.
func (c *CandidateCollector) candidate(
	ctx context.Context,
	r ports.ReadyOrder,
	apiKey string,
) (*order.Candidate, *UnresolvedOrder, error) {
	if r.AddressID == nil {
		c.logger.WarnContext(ctx, "Order has no address, skipping", "order_id", r.OrderID)
		return nil, &UnresolvedOrder{OrderID: r.OrderID, Reason: UnresolvedNoAddress}, nil
	}

	addr, err := c.addresses.Get(ctx, *r.AddressID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		c.logger.WarnContext(ctx, "Order address not found, skipping", "order_id", r.OrderID, "address_id", *r.AddressID)
		return nil, &UnresolvedOrder{OrderID: r.OrderID, Reason: UnresolvedAddressNotFound}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load address of order %d: %w", r.OrderID, err)
	}

	coordinates, err := c.resolver.Resolve(ctx, addr, apiKey)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if errors.Is(err, geocoding.ErrAddressNotResolved) {
			c.logger.WarnContext(ctx, "Address not resolved, skipping order",
				"order_id", r.OrderID, "address", addr.String(), "error", err)
			return nil, &UnresolvedOrder{OrderID: r.OrderID, Address: addr.String(), Reason: UnresolvedNotGeocoded}, nil
		}
		return nil, nil, fmt.Errorf("resolve address of order %d: %w", r.OrderID, err)
	}

	pizzas, err := c.pizzas.CountPizzas(ctx, r.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("count pizzas of order %d: %w", r.OrderID, err)
	}

	candidate, err := order.NewCandidate(r.OrderID, addr, r.Priority, r.CreatedAt, pizzas)
	if err != nil {
		c.logger.WarnContext(ctx, "Order is not a valid candidate, skipping", "order_id", r.OrderID, "error", err)
		return nil, nil, nil
	}
	if err = candidate.Locate(coordinates); err != nil {
		return nil, nil, err
	}

	return candidate, nil, nil
}
