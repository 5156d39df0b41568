package courierrepo

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCourierRepository implements ports.CourierRepository.
type GormCourierRepository struct {
	db *gorm.DB
}

func NewGormCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// ListActive returns active couriers ordered by registration.
func (r *GormCourierRepository) ListActive(ctx context.Context) ([]kernel.UUID, error) {
	var uids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("active = ?", true).
		Order("created_at ASC, uid ASC").
		Pluck("uid", &uids).Error
	if err != nil {
		return nil, err
	}
	return toKernel(uids)
}

// FilterIdle drops couriers with a route row in progress. Input order is kept.
func (r *GormCourierRepository) FilterIdle(ctx context.Context, couriers []kernel.UUID) ([]kernel.UUID, error) {
	if len(couriers) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(couriers))
	for _, c := range couriers {
		ids = append(ids, c.Bytes())
	}

	var busy []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("routes").
		Distinct("motoboy_uid").
		Where("in_progress = ? AND motoboy_uid IN ?", true, ids).
		Pluck("motoboy_uid", &busy).Error
	if err != nil {
		return nil, err
	}

	busySet := make(map[uuid.UUID]struct{}, len(busy))
	for _, id := range busy {
		busySet[id] = struct{}{}
	}

	idle := make([]kernel.UUID, 0, len(couriers))
	for _, c := range couriers {
		if _, ok := busySet[c.Bytes()]; !ok {
			idle = append(idle, c)
		}
	}
	return idle, nil
}

func toKernel(uids []uuid.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(uids))
	for _, uid := range uids {
		id, err := kernel.UUIDFromString(uid.String())
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
