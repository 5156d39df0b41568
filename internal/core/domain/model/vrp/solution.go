package vrp

import (
	"errors"
	"fmt"
)

// ErrInvalidSolution is wrapped by every shape violation found in an optimizer answer.
var ErrInvalidSolution = errors.New("solution is invalid")

// StepType tags a step of an optimized route.
type StepType string

const (
	StepStart StepType = "start"
	StepJob   StepType = "job"
	StepEnd   StepType = "end"
	StepBreak StepType = "break"
)

func (t StepType) IsKnown() bool {
	switch t {
	case StepStart, StepJob, StepEnd, StepBreak:
		return true
	default:
		return false
	}
}

// Step is a single leg of a route. Duration is the travel time in seconds the
// optimizer reports for the step.
type Step struct {
	Type     StepType
	Job      *int
	Duration int
}

// Route is the ordered plan of one vehicle.
type Route struct {
	Vehicle  int
	Steps    []Step
	Duration int
	Distance *int
}

// Solution is the optimizer answer. Unassigned lists job ids no vehicle could take.
type Solution struct {
	Routes     []Route
	Unassigned []int
}

// Validate checks the shape: every step has a known type and every job step
// references a job.
func (s Solution) Validate() error {
	for ri, r := range s.Routes {
		if r.Vehicle < 1 {
			return fmt.Errorf("%w: route %d has vehicle %d", ErrInvalidSolution, ri, r.Vehicle)
		}
		for si, step := range r.Steps {
			if !step.Type.IsKnown() {
				return fmt.Errorf("%w: route %d step %d has unknown type %q", ErrInvalidSolution, ri, si, step.Type)
			}
			if step.Type == StepJob && step.Job == nil {
				return fmt.Errorf("%w: route %d step %d is a job without id", ErrInvalidSolution, ri, si)
			}
			if step.Duration < 0 {
				return fmt.Errorf("%w: route %d step %d has negative duration", ErrInvalidSolution, ri, si)
			}
		}
	}
	return nil
}

// InnerSteps drops the depot legs: the first and the last step.
func (r Route) InnerSteps() []Step {
	if len(r.Steps) <= 2 {
		return nil
	}
	return r.Steps[1 : len(r.Steps)-1]
}

// JobCount is the number of job steps across all routes.
func (s Solution) JobCount() int {
	n := 0
	for _, r := range s.Routes {
		for _, step := range r.Steps {
			if step.Type == StepJob {
				n++
			}
		}
	}
	return n
}
