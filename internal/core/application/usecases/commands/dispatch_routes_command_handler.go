package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vrp"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

var (
	ErrNoCandidates     = errors.New("no orders ready for dispatch")
	ErrNoIdleCouriers   = errors.New("no idle couriers available")
	ErrDepotNotResolved = errors.New("pizzeria address could not be resolved")
)

// Cycle outcomes reported in DispatchRoutesResult.Status.
const (
	CycleDispatched     = "dispatched"
	CycleNoCandidates   = "no_candidates"
	CycleNoIdleCouriers = "no_idle_couriers"
	CycleEmptyRequest   = "empty_request"
	CycleFailed         = "failed"
)

const DefaultCycleTimeout = 3 * time.Minute

type (
	// CandidateSource yields ranked candidates; see CandidateCollector.
	CandidateSource interface {
		Collect(
			ctx context.Context,
			statuses []order.Status,
			apiKey string,
			now time.Time,
		) ([]services.RankedCandidate, []UnresolvedOrder, error)
	}

	// CourierAvailability answers fleet and idleness questions.
	CourierAvailability interface {
		Fleet(ctx context.Context) ([]kernel.UUID, error)
		Idle(ctx context.Context, couriers []kernel.UUID) ([]kernel.UUID, error)
	}

	// AssignmentWriter persists a solution; see RouteAssignmentWriter.
	AssignmentWriter interface {
		Commit(
			ctx context.Context,
			solution vrp.Solution,
			plan services.RoutePlan,
			scope ClearScope,
			fleet []kernel.UUID,
			now time.Time,
		) (Summary, error)
	}
)

// DispatchOptions are the cycle settings that do not come with the command.
type DispatchOptions struct {
	// Statuses selects candidate orders; empty means order.ReadyStatuses().
	Statuses   []order.Status
	ClearScope ClearScope
	// CandidateCapFactor limits candidates to factor × capacity × fleet size; 0 disables the cap.
	CandidateCapFactor int
	// CycleTimeout bounds the whole cycle; 0 means DefaultCycleTimeout.
	CycleTimeout time.Duration
	Now          func() time.Time
}

// DispatchRoutesResult describes a finished cycle. Soft outcomes (nothing to do)
// are results, not errors.
type DispatchRoutesResult struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Candidates   int      `json:"candidates"`
	IdleCouriers int      `json:"idle_couriers"`
	Jobs         int      `json:"jobs"`
	Summary      *Summary `json:"summary,omitempty"`

	// UnresolvedOrders are ready orders skipped because they could not be located.
	UnresolvedOrders []UnresolvedOrder `json:"unresolved_orders,omitempty"`
}

// Reason maps a soft outcome back to its sentinel error; nil for dispatched cycles.
func (r DispatchRoutesResult) Reason() error {
	switch r.Status {
	case CycleNoCandidates:
		return ErrNoCandidates
	case CycleNoIdleCouriers:
		return ErrNoIdleCouriers
	case CycleEmptyRequest:
		return services.ErrEmptyRequest
	default:
		return nil
	}
}

// DispatchRoutesCommandHandler runs one dispatch cycle.
//
// The cycle collects and ranks candidates, finds idle couriers, resolves the
// pizzeria, builds the VRP request, asks the optimizer and writes the solution.
// The pizzeria is only geocoded once there is something to route.
// Optimizer retries happen inside the optimizer client; candidates and couriers
// are not recomputed between attempts.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case err != nil:
//	    log.Printf("Dispatch failed: %v", err)
//	case result.Reason() != nil:
//	    log.Printf("Nothing dispatched: %s", result.Message)
//	default:
//	    log.Printf("Assigned %d stops", result.Summary.TotalAssignments)
//	}
type DispatchRoutesCommandHandler struct {
	resolver  AddressResolver
	collector CandidateSource
	couriers  CourierAvailability
	builder   services.RouteRequestBuilder
	optimizer ports.RouteOptimizer
	writer    AssignmentWriter
	options   DispatchOptions
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewDispatchRoutesCommandHandler(
	resolver AddressResolver,
	collector CandidateSource,
	couriers CourierAvailability,
	optimizer ports.RouteOptimizer,
	writer AssignmentWriter,
	options DispatchOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) *DispatchRoutesCommandHandler {
	if len(options.Statuses) == 0 {
		options.Statuses = order.ReadyStatuses()
	}
	if options.CycleTimeout <= 0 {
		options.CycleTimeout = DefaultCycleTimeout
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &DispatchRoutesCommandHandler{
		resolver:  resolver,
		collector: collector,
		couriers:  couriers,
		builder:   services.NewRouteRequestBuilder(),
		optimizer: optimizer,
		writer:    writer,
		options:   options,
		metrics:   m,
		logger:    logger.With("component", "dispatch_routes"),
	}
}

// Handle runs the cycle under the configured deadline.
func (h *DispatchRoutesCommandHandler) Handle(ctx context.Context, command DispatchRoutesCommand) (DispatchRoutesResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchRoutesResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.options.CycleTimeout)
	defer cancel()

	started := h.options.Now()
	result, err := h.run(ctx, command, started)

	outcome := result.Status
	if err != nil {
		outcome = CycleFailed
		h.logger.ErrorContext(ctx, "Dispatch cycle failed", "error", err)
	} else {
		h.logger.InfoContext(ctx, "Dispatch cycle finished",
			"status", result.Status,
			"candidates", result.Candidates,
			"idle_couriers", result.IdleCouriers,
		)
	}
	h.metrics.RecordCycle(outcome, h.options.Now().Sub(started))

	return result, err
}

func (h *DispatchRoutesCommandHandler) run(
	ctx context.Context,
	command DispatchRoutesCommand,
	now time.Time,
) (DispatchRoutesResult, error) {
	apiKey := command.APIKey()

	ranked, unresolved, err := h.collector.Collect(ctx, h.options.Statuses, apiKey, now)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("collect candidates: %w", err)
	}
	if len(ranked) == 0 {
		return soft(CycleNoCandidates, ErrNoCandidates, 0, 0, unresolved), nil
	}

	fleet, err := h.couriers.Fleet(ctx)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("list fleet: %w", err)
	}
	idle, err := h.couriers.Idle(ctx, fleet)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("find idle couriers: %w", err)
	}
	if len(idle) == 0 {
		return soft(CycleNoIdleCouriers, ErrNoIdleCouriers, len(ranked), 0, unresolved), nil
	}

	if limit := h.options.CandidateCapFactor * command.CapacityPerCourier() * len(fleet); limit > 0 && len(ranked) > limit {
		h.logger.InfoContext(ctx, "Candidate cap reached", "candidates", len(ranked), "cap", limit)
		ranked = ranked[:limit]
	}

	depot, err := h.resolver.ResolveText(ctx, command.PizzeriaAddress(), apiKey)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("%w: %w", ErrDepotNotResolved, err)
	}

	plan, err := h.builder.Build(ranked, idle, depot, command.CapacityPerCourier())
	if errors.Is(err, services.ErrEmptyRequest) {
		return soft(CycleEmptyRequest, err, len(ranked), len(idle), unresolved), nil
	}
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("build routing request: %w", err)
	}

	solution, err := h.optimizer.Optimize(ctx, plan.Request, apiKey)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("optimize routes: %w", err)
	}

	summary, err := h.writer.Commit(ctx, solution, plan, h.options.ClearScope, fleet, now)
	if err != nil {
		return DispatchRoutesResult{}, fmt.Errorf("write routes: %w", err)
	}

	return DispatchRoutesResult{
		Status:           CycleDispatched,
		Message:          fmt.Sprintf("%d stops assigned to %d couriers", summary.TotalAssignments, len(summary.Couriers)),
		Candidates:       len(ranked),
		IdleCouriers:     len(idle),
		Jobs:             len(plan.Request.Jobs),
		Summary:          &summary,
		UnresolvedOrders: unresolved,
	}, nil
}

func soft(status string, reason error, candidates, idle int, unresolved []UnresolvedOrder) DispatchRoutesResult {
	return DispatchRoutesResult{
		Status:           status,
		Message:          reason.Error(),
		Candidates:       candidates,
		IdleCouriers:     idle,
		UnresolvedOrders: unresolved,
	}
}
