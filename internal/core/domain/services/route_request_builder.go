package services

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vrp"
	"dispatch/internal/pkg/errs"
)

// ErrEmptyRequest is returned when there are no jobs or no vehicles to optimize.
var ErrEmptyRequest = errors.New("empty routing request")

// RoutePlan is a VRP request plus the maps needed to read the solution back.
type RoutePlan struct {
	Request         vrp.Request
	JobCandidates   map[int]*order.Candidate
	VehicleCouriers map[int]kernel.UUID
}

// CourierIDs lists couriers in vehicle order.
func (p RoutePlan) CourierIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(p.VehicleCouriers))
	for i := 1; i <= len(p.Request.Vehicles); i++ {
		if id, ok := p.VehicleCouriers[i]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// RouteRequestBuilder turns ranked candidates and idle couriers into a VRP request.
type RouteRequestBuilder struct{}

func NewRouteRequestBuilder() RouteRequestBuilder {
	return RouteRequestBuilder{}
}

// Build creates one job per geocoded candidate and one vehicle per idle courier.
//
// Jobs are numbered 1..n in the order of ranked, vehicles 1..m in the order of idle.
// Every vehicle starts and ends at depot with the same capacity. Candidates without
// coordinates are skipped. ErrEmptyRequest is returned when either side is empty,
// so the optimizer is never called with a meaningless problem.
func (b RouteRequestBuilder) Build(
	ranked []RankedCandidate,
	idle []kernel.UUID,
	depot kernel.Coordinates,
	capacityPerCourier int,
) (RoutePlan, error) {
	if err := depot.Validate(); err != nil {
		return RoutePlan{}, err
	}
	if capacityPerCourier <= 0 {
		return RoutePlan{}, errs.NewValueIsInvalidErrorWithCause("capacity per courier",
			fmt.Errorf("%d is not greater than 0", capacityPerCourier))
	}

	plan := RoutePlan{
		JobCandidates:   make(map[int]*order.Candidate, len(ranked)),
		VehicleCouriers: make(map[int]kernel.UUID, len(idle)),
	}

	for _, rc := range ranked {
		location, ok := rc.Candidate.Coordinates()
		if !ok {
			continue
		}
		job := vrp.Job{
			ID:       len(plan.Request.Jobs) + 1,
			Location: location,
			Amount:   []int{rc.Candidate.Pizzas()},
			Service:  vrp.ServiceSeconds,
			Priority: JobPriority(rc.Rank),
		}
		plan.Request.Jobs = append(plan.Request.Jobs, job)
		plan.JobCandidates[job.ID] = rc.Candidate
	}

	for _, courierID := range idle {
		vehicle := vrp.Vehicle{
			ID:       len(plan.Request.Vehicles) + 1,
			Profile:  vrp.ProfileDrivingCar,
			Start:    depot,
			End:      depot,
			Capacity: []int{capacityPerCourier},
		}
		plan.Request.Vehicles = append(plan.Request.Vehicles, vehicle)
		plan.VehicleCouriers[vehicle.ID] = courierID
	}

	if plan.Request.IsEmpty() {
		return plan, fmt.Errorf("%w: %d jobs, %d vehicles",
			ErrEmptyRequest, len(plan.Request.Jobs), len(plan.Request.Vehicles))
	}

	return plan, nil
}
