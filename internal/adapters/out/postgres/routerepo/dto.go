// Package routerepo persists route stops in the routes table.
//
// Column names follow the table shared with the courier app: motoboy_uid is the
// courier, tempo_total_minutos the cumulative ETA and ordem the stop sequence.
package routerepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// RouteDTO maps one stop row.
type RouteDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID    uuid.UUID `gorm:"column:motoboy_uid;type:uuid;index"`
	StartTime    time.Time
	TotalMinutes int   `gorm:"column:tempo_total_minutos"`
	Started      bool  `gorm:"not null;default:false"`
	InProgress   bool  `gorm:"not null;default:false"`
	OrderID      int64 `gorm:"column:id_order;index"`
	Sequence     int   `gorm:"column:ordem"`
}

func (RouteDTO) TableName() string {
	return "routes"
}

func fromDomain(stop *route.Stop) RouteDTO {
	return RouteDTO{
		ID:           stop.ID().Bytes(),
		CourierID:    stop.CourierID().Bytes(),
		StartTime:    stop.StartTime(),
		TotalMinutes: stop.ETAMinutes(),
		Started:      stop.IsStarted(),
		InProgress:   stop.IsInProgress(),
		OrderID:      stop.OrderID(),
		Sequence:     stop.Sequence(),
	}
}

func toDomain(dto RouteDTO) (*route.Stop, error) {
	id, err := kernel.UUIDFromString(dto.ID.String())
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromString(dto.CourierID.String())
	if err != nil {
		return nil, err
	}
	return route.RestoreStop(id, courierID, dto.OrderID, dto.Sequence, dto.TotalMinutes,
		dto.StartTime, dto.Started, dto.InProgress)
}
