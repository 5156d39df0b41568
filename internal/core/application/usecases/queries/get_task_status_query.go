package queries

import (
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetTaskStatusQueryIsNotConstructed = errors.New(
		"GetTaskStatusQuery must be created via NewGetTaskStatusQuery constructor",
	)
)

// GetTaskStatusQuery polls the state of a queued dispatch cycle.
//
// Example:
//
//	query, err := NewGetTaskStatusQuery(c.Param("id"))
//	if err != nil {
//	    return echo.NewHTTPError(http.StatusBadRequest, err.Error())
//	}
//	status, err := handler.Handle(ctx, query)
type GetTaskStatusQuery struct {
	taskID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetTaskStatusQuery(taskID string) (GetTaskStatusQuery, error) {
	id, err := kernel.UUIDFromString(taskID)
	if err != nil {
		return GetTaskStatusQuery{}, err
	}
	return GetTaskStatusQuery{taskID: id, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTaskStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetTaskStatusQueryIsNotConstructed)
}

func (q GetTaskStatusQuery) TaskID() kernel.UUID {
	return q.taskID
}

// GetTaskStatusQueryResponse is the polling view of a task. Result carries the
// cycle outcome once the task succeeded.
type GetTaskStatusQueryResponse struct {
	TaskID    kernel.UUID     `json:"task_id"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
