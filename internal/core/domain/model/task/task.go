package task

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Status is the externally visible state of a dispatch task.
type Status string

const (
	Pending Status = "PENDING"
	Started Status = "STARTED"
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
)

var ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask")

func (s Status) IsTerminal() bool {
	return s == Success || s == Failure
}

func (s Status) Validate() error {
	switch s {
	case Pending, Started, Success, Failure:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("task status", fmt.Errorf("%q is unknown", string(s)))
	}
}

// Input is what triggers a cycle: credentials, the depot address and the courier capacity.
type Input struct {
	APIKey             string
	PizzeriaAddress    string
	CapacityPerCourier int
	TriggeredBy        string
}

// Task tracks one queued dispatch cycle.
type Task struct {
	id        kernel.UUID
	input     Input
	status    Status
	result    []byte
	errorText string
	createdAt time.Time
	updatedAt time.Time
	guard     guard.ConstructorGuard
}

func NewTask(input Input, now time.Time) *Task {
	return &Task{
		id:        kernel.NewUUID(),
		input:     input,
		status:    Pending,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}
}

// RestoreTask rebuilds a task loaded from the store.
func RestoreTask(
	id kernel.UUID,
	input Input,
	status Status,
	result []byte,
	errorText string,
	createdAt, updatedAt time.Time,
) (*Task, error) {
	if err := errors.Join(id.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Task{
		id:        id,
		input:     input,
		status:    status,
		result:    result,
		errorText: errorText,
		createdAt: createdAt,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (t *Task) Validate() error {
	if t == nil {
		return ErrTaskIsNotConstructed
	}
	return t.guard.Validate(ErrTaskIsNotConstructed)
}

func (t *Task) ID() kernel.UUID { return t.id }
func (t *Task) Input() Input { return t.input }
func (t *Task) Status() Status { return t.status }
func (t *Task) Result() []byte { return t.result }
func (t *Task) ErrorText() string { return t.errorText }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// Start moves a pending task to Started.
func (t *Task) Start(now time.Time) error {
	if t.status != Pending {
		return errs.NewValueIsInvalidErrorWithCause("task status",
			fmt.Errorf("cannot start a task in %s", t.status))
	}
	t.status = Started
	t.updatedAt = now
	return nil
}

// Succeed stores the cycle summary and finishes the task.
func (t *Task) Succeed(result []byte, now time.Time) error {
	if t.status.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause("task status",
			fmt.Errorf("task already finished with %s", t.status))
	}
	t.status = Success
	t.result = result
	t.updatedAt = now
	return nil
}

// Fail records the cause and finishes the task.
func (t *Task) Fail(cause error, now time.Time) error {
	if t.status.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause("task status",
			fmt.Errorf("task already finished with %s", t.status))
	}
	t.status = Failure
	if cause != nil {
		t.errorText = cause.Error()
	}
	t.updatedAt = now
	return nil
}
