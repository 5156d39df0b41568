package services

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/vrp"
)

// CourierAssignment is the ordered list of pending stops planned for one courier.
type CourierAssignment struct {
	CourierID kernel.UUID
	Stops     []*route.Stop
}

// OrderIDs returns the orders in stop sequence.
func (a CourierAssignment) OrderIDs() []int64 {
	ids := make([]int64, 0, len(a.Stops))
	for _, s := range a.Stops {
		ids = append(ids, s.OrderID())
	}
	return ids
}

// AssignmentSet is a solution translated back into the dispatch domain.
type AssignmentSet struct {
	Couriers         []CourierAssignment
	UnassignedOrders []int64
	UnknownVehicles  []int
}

// StopCount is the total number of planned stops.
func (s AssignmentSet) StopCount() int {
	n := 0
	for _, c := range s.Couriers {
		n += len(c.Stops)
	}
	return n
}

// AssignmentPlanner reads an optimizer solution back into route stops.
type AssignmentPlanner struct{}

func NewAssignmentPlanner() AssignmentPlanner {
	return AssignmentPlanner{}
}

// Plan walks every route between its depot legs. Each job step becomes a pending
// stop with sequence 1.. and an ETA that accumulates the whole minutes of every
// step so far. Steps referencing unknown jobs are skipped, as are routes whose
// vehicle is not part of the plan. Jobs that end up on no route are reported as
// unassigned orders.
func (AssignmentPlanner) Plan(solution vrp.Solution, plan RoutePlan, now time.Time) (AssignmentSet, error) {
	if err := solution.Validate(); err != nil {
		return AssignmentSet{}, err
	}

	var set AssignmentSet
	placed := make(map[int]bool, len(plan.JobCandidates))

	for _, r := range solution.Routes {
		courierID, ok := plan.VehicleCouriers[r.Vehicle]
		if !ok {
			set.UnknownVehicles = append(set.UnknownVehicles, r.Vehicle)
			continue
		}

		assignment := CourierAssignment{CourierID: courierID}
		elapsed := 0
		for _, step := range r.InnerSteps() {
			if step.Type != vrp.StepJob || step.Job == nil {
				continue
			}
			jobID := *step.Job
			candidate, known := plan.JobCandidates[jobID]
			if !known || placed[jobID] {
				continue
			}

			elapsed += step.Duration / 60
			stop, err := route.NewPendingStop(courierID, candidate.OrderID(), len(assignment.Stops)+1, elapsed, now)
			if err != nil {
				return AssignmentSet{}, fmt.Errorf("plan stop for job %d: %w", jobID, err)
			}
			assignment.Stops = append(assignment.Stops, stop)
			placed[jobID] = true
		}

		if len(assignment.Stops) > 0 {
			set.Couriers = append(set.Couriers, assignment)
		}
	}

	for jobID := 1; jobID <= len(plan.Request.Jobs); jobID++ {
		if candidate, ok := plan.JobCandidates[jobID]; ok && !placed[jobID] {
			set.UnassignedOrders = append(set.UnassignedOrders, candidate.OrderID())
		}
	}

	return set, nil
}
