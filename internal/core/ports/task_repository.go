package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
)

// TaskRepository stores dispatch task state so status can be polled by id.
type TaskRepository interface {
	Add(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	// Get returns errs.ErrObjectNotFound for unknown ids.
	Get(ctx context.Context, id kernel.UUID) (*task.Task, error)
}
