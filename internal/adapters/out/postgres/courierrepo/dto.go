// Package courierrepo answers fleet and availability queries over the couriers table.
package courierrepo

import (
	"time"

	"github.com/google/uuid"
)

// CourierDTO maps the couriers table. Inactive couriers are off shift.
type CourierDTO struct {
	UID       uuid.UUID `gorm:"column:uid;type:uuid;primaryKey"`
	Name      string
	Active    bool `gorm:"index"`
	CreatedAt time.Time
}

func (CourierDTO) TableName() string {
	return "couriers"
}
