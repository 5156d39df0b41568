package queries

import (
	"context"
	"encoding/json"

	"dispatch/internal/core/ports"
)

// GetTaskStatusQueryHandler reads task state through the task repository, so
// the stored result is decoded the same way the worker encoded it.
type GetTaskStatusQueryHandler struct {
	tasks ports.TaskRepository
}

func NewGetTaskStatusQueryHandler(tasks ports.TaskRepository) GetTaskStatusQueryHandler {
	return GetTaskStatusQueryHandler{tasks: tasks}
}

// Handle returns errs.ErrObjectNotFound for unknown ids.
func (h GetTaskStatusQueryHandler) Handle(
	ctx context.Context,
	query GetTaskStatusQuery,
) (GetTaskStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTaskStatusQueryResponse{}, err
	}

	t, err := h.tasks.Get(ctx, query.TaskID())
	if err != nil {
		return GetTaskStatusQueryResponse{}, err
	}

	resp := GetTaskStatusQueryResponse{
		TaskID:    t.ID(),
		Status:    string(t.Status()),
		Error:     t.ErrorText(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
	if result := t.Result(); len(result) > 0 && json.Valid(result) {
		resp.Result = json.RawMessage(result)
	}

	return resp, nil
}
