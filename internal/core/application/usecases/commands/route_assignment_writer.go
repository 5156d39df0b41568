package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vrp"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/metrics"
)

// ErrNothingPersisted is returned when every courier write of a cycle failed.
var ErrNothingPersisted = errors.New("no route could be persisted")

// ClearScope selects whose pending stops are discarded before new stops are written.
type ClearScope int

const (
	// ClearScopeIdle clears only the couriers sent to the optimizer as vehicles.
	ClearScopeIdle ClearScope = iota
	// ClearScopeFleet clears every active courier.
	ClearScopeFleet
)

func ParseClearScope(s string) (ClearScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "idle":
		return ClearScopeIdle, nil
	case "fleet":
		return ClearScopeFleet, nil
	default:
		return ClearScopeIdle, fmt.Errorf("unknown clear scope %q", s)
	}
}

func (s ClearScope) String() string {
	if s == ClearScopeFleet {
		return "fleet"
	}
	return "idle"
}

// PersistenceError is the failure of one courier's route replacement.
type PersistenceError struct {
	CourierID kernel.UUID
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist route of courier %s: %v", e.CourierID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CourierSummary is what was written for one courier.
type CourierSummary struct {
	CourierID string  `json:"courier_id"`
	OrderIDs  []int64 `json:"order_ids"`
	Stops     int     `json:"stops"`

	// TotalMinutes is the ETA of the courier's last written stop.
	TotalMinutes int `json:"total_minutes"`
}

// FailedCourier is a courier whose transaction was rolled back.
type FailedCourier struct {
	CourierID string `json:"courier_id"`
	Error     string `json:"error"`
}

// Summary describes the outcome of writing one solution.
type Summary struct {
	Couriers         []CourierSummary `json:"couriers"`
	Failed           []FailedCourier  `json:"failed,omitempty"`
	UnassignedOrders []int64          `json:"unassigned_orders,omitempty"`
	LockedOrders     []int64          `json:"locked_orders,omitempty"`
	UnknownVehicles  []int            `json:"unknown_vehicles,omitempty"`
	ClearedCouriers  int              `json:"cleared_couriers"`
	TotalAssignments int              `json:"total_assignments"`
}

// WriterOptions tune the route writer.
type WriterOptions struct {
	// UseAdvisoryLock serializes writers of overlapping cycles on LockKey.
	UseAdvisoryLock bool
	LockKey         int64
}

// RouteAssignmentWriter persists an optimizer solution as pending route stops.
//
// Every courier in the clear scope gets its own transaction: pending stops are
// deleted, then the new stops are inserted. Started and in-progress stops are
// never touched. A failing courier is rolled back and reported while the others
// proceed.
type RouteAssignmentWriter struct {
	uowFactory RouteUoWFactory
	planner    services.AssignmentPlanner
	options    WriterOptions
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewRouteAssignmentWriter(
	uowFactory RouteUoWFactory,
	options WriterOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RouteAssignmentWriter {
	return &RouteAssignmentWriter{
		uowFactory: uowFactory,
		planner:    services.NewAssignmentPlanner(),
		options:    options,
		metrics:    m,
		logger:     logger.With("component", "route_assignment_writer"),
	}
}

// Commit writes solution. fleet is only read when scope is ClearScopeFleet.
// A malformed solution is rejected before anything is deleted.
func (w *RouteAssignmentWriter) Commit(
	ctx context.Context,
	solution vrp.Solution,
	plan services.RoutePlan,
	scope ClearScope,
	fleet []kernel.UUID,
	now time.Time,
) (Summary, error) {
	set, err := w.planner.Plan(solution, plan, now)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Couriers:         []CourierSummary{},
		UnassignedOrders: set.UnassignedOrders,
		UnknownVehicles:  set.UnknownVehicles,
	}
	for _, vehicle := range set.UnknownVehicles {
		w.logger.WarnContext(ctx, "Solution references an unknown vehicle, skipping its route", "vehicle", vehicle)
	}

	stopsByCourier := make(map[kernel.UUID][]*route.Stop, len(set.Couriers))
	for _, a := range set.Couriers {
		stopsByCourier[a.CourierID] = a.Stops
	}

	attempted := 0
	for _, courierID := range w.targets(plan, scope, fleet, set) {
		stops := stopsByCourier[courierID]
		if len(stops) > 0 {
			attempted++
		}

		written, locked, err := w.replace(ctx, courierID, stops)
		if err != nil {
			perr := &PersistenceError{CourierID: courierID, Err: err}
			w.logger.ErrorContext(ctx, "Route replacement rolled back", "courier_id", courierID.String(), "error", err)
			summary.Failed = append(summary.Failed, FailedCourier{CourierID: courierID.String(), Error: perr.Error()})
			continue
		}

		summary.ClearedCouriers++
		summary.LockedOrders = append(summary.LockedOrders, locked...)
		if len(written) == 0 {
			continue
		}

		orderIDs := make([]int64, 0, len(written))
		for _, s := range written {
			orderIDs = append(orderIDs, s.OrderID())
		}
		summary.Couriers = append(summary.Couriers, CourierSummary{
			CourierID:    courierID.String(),
			OrderIDs:     orderIDs,
			Stops:        len(written),
			TotalMinutes: written[len(written)-1].ETAMinutes(),
		})
		summary.TotalAssignments += len(written)
	}

	w.metrics.RecordAssignments(summary.TotalAssignments)

	if attempted > 0 && summary.TotalAssignments == 0 && len(summary.Failed) > 0 {
		return summary, fmt.Errorf("%w: %d couriers failed", ErrNothingPersisted, len(summary.Failed))
	}
	return summary, nil
}

// targets lists the couriers to clear: the scope first, then any assigned courier
// outside it, without duplicates.
func (w *RouteAssignmentWriter) targets(
	plan services.RoutePlan,
	scope ClearScope,
	fleet []kernel.UUID,
	set services.AssignmentSet,
) []kernel.UUID {
	base := plan.CourierIDs()
	if scope == ClearScopeFleet {
		base = fleet
	}

	seen := make(map[kernel.UUID]bool, len(base)+len(set.Couriers))
	targets := make([]kernel.UUID, 0, len(base)+len(set.Couriers))
	add := func(id kernel.UUID) {
		if !seen[id] {
			seen[id] = true
			targets = append(targets, id)
		}
	}
	for _, id := range base {
		add(id)
	}
	for _, a := range set.Couriers {
		add(a.CourierID)
	}
	return targets
}

// replace runs one courier's delete-then-insert in its own transaction. Orders that
// another courier already started are skipped; pending stops of other couriers for
// the same orders are superseded so an order never sits in two active rows.
func (w *RouteAssignmentWriter) replace(
	ctx context.Context,
	courierID kernel.UUID,
	stops []*route.Stop,
) (written []*route.Stop, locked []int64, err error) {
	uow := w.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if w.options.UseAdvisoryLock {
		if err = uow.AcquireLock(ctx, w.options.LockKey); err != nil {
			return nil, nil, fmt.Errorf("acquire dispatch lock: %w", err)
		}
	}

	routes := uow.RouteRepository()
	if _, err = routes.DeletePending(ctx, courierID); err != nil {
		return nil, nil, fmt.Errorf("delete pending stops: %w", err)
	}

	if len(stops) > 0 {
		orderIDs := make([]int64, 0, len(stops))
		for _, s := range stops {
			orderIDs = append(orderIDs, s.OrderID())
		}

		if _, err = routes.DeletePendingForOrders(ctx, orderIDs); err != nil {
			return nil, nil, fmt.Errorf("delete superseded stops: %w", err)
		}

		locked, err = routes.LockedOrders(ctx, orderIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("find started orders: %w", err)
		}

		for _, s := range stops {
			if slices.Contains(locked, s.OrderID()) {
				w.logger.WarnContext(ctx, "Order already on an active route, skipping",
					"order_id", s.OrderID(), "courier_id", courierID.String())
				continue
			}

			stop := s
			if s.Sequence() != len(written)+1 {
				stop, err = route.NewPendingStop(courierID, s.OrderID(), len(written)+1, s.ETAMinutes(), s.StartTime())
				if err != nil {
					return nil, nil, err
				}
			}
			if err = routes.Add(ctx, stop); err != nil {
				return nil, nil, fmt.Errorf("add stop for order %d: %w", s.OrderID(), err)
			}
			written = append(written, stop)
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return written, locked, nil
}
