// Package taskrepo persists dispatch task status so it can be polled after the worker finished.
// The optimizer API key is never stored.
package taskrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskDTO maps the dispatch_tasks table.
type TaskDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status             string    `gorm:"index"`
	PizzeriaAddress    string
	CapacityPerCourier int
	TriggeredBy        string
	Result             string `gorm:"type:text"`
	Error              string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (TaskDTO) TableName() string {
	return "dispatch_tasks"
}

func fromDomain(t *task.Task) TaskDTO {
	in := t.Input()
	return TaskDTO{
		ID:                 t.ID().Bytes(),
		Status:             string(t.Status()),
		PizzeriaAddress:    in.PizzeriaAddress,
		CapacityPerCourier: in.CapacityPerCourier,
		TriggeredBy:        in.TriggeredBy,
		Result:             string(t.Result()),
		Error:              t.ErrorText(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
	}
}

func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromString(dto.ID.String())
	if err != nil {
		return nil, err
	}
	var result []byte
	if dto.Result != "" {
		result = []byte(dto.Result)
	}
	return task.RestoreTask(id, task.Input{
		PizzeriaAddress:    dto.PizzeriaAddress,
		CapacityPerCourier: dto.CapacityPerCourier,
		TriggeredBy:        dto.TriggeredBy,
	}, task.Status(dto.Status), result, dto.Error, dto.CreatedAt, dto.UpdatedAt)
}
