package vrp

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	// ServiceSeconds is the fixed handover time spent at every delivery.
	ServiceSeconds = 300
	// ProfileDrivingCar is the routing profile used for couriers' motorbikes.
	ProfileDrivingCar = "driving-car"
	// MaxPriority is the highest job priority the optimizer accepts.
	MaxPriority = 10
)

// Job is one delivery to be placed on a vehicle.
type Job struct {
	ID       int
	Location kernel.Coordinates
	Amount   []int
	Service  int
	Priority int
}

func (j Job) Validate() error {
	var err error
	if j.ID < 1 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("job id", fmt.Errorf("%d is less than 1", j.ID)))
	}
	if e := j.Location.Validate(); e != nil {
		err = errors.Join(err, e)
	}
	if j.Priority < 0 || j.Priority > MaxPriority {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("job priority", j.Priority, 0, MaxPriority))
	}
	if j.Service < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("job service"))
	}
	return err
}

// Vehicle is one idle courier starting and ending at the depot.
type Vehicle struct {
	ID       int
	Profile  string
	Start    kernel.Coordinates
	End      kernel.Coordinates
	Capacity []int
}

func (v Vehicle) Validate() error {
	var err error
	if v.ID < 1 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("vehicle id", fmt.Errorf("%d is less than 1", v.ID)))
	}
	if v.Profile == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("vehicle profile"))
	}
	err = errors.Join(err, v.Start.Validate(), v.End.Validate())
	for _, c := range v.Capacity {
		if c <= 0 {
			err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("vehicle capacity",
				fmt.Errorf("%d is not greater than 0", c)))
		}
	}
	return err
}

// Request is the problem submitted to the optimizer.
type Request struct {
	Jobs     []Job
	Vehicles []Vehicle
}

// IsEmpty reports whether there is nothing worth asking the optimizer.
func (r Request) IsEmpty() bool {
	return len(r.Jobs) == 0 || len(r.Vehicles) == 0
}

func (r Request) Validate() error {
	var err error
	for _, j := range r.Jobs {
		err = errors.Join(err, j.Validate())
	}
	for _, v := range r.Vehicles {
		err = errors.Join(err, v.Validate())
	}
	return err
}
