package routerepo

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

const pendingFilter = "started = ? AND in_progress = ?"

// GormRouteRepository implements ports.RouteRepository.
type GormRouteRepository struct {
	db *gorm.DB
}

func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// Add inserts a stop. Only pending stops are accepted.
func (r *GormRouteRepository) Add(ctx context.Context, stop *route.Stop) error {
	if err := stop.Validate(); err != nil {
		return err
	}
	if !stop.IsPending() {
		return errs.NewValueIsInvalidError("only pending stops can be added")
	}

	dto := fromDomain(stop)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormRouteRepository) DeletePending(ctx context.Context, courierID kernel.UUID) (int64, error) {
	if err := courierID.Validate(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Where("motoboy_uid = ?", courierID.Bytes()).
		Where(pendingFilter, false, false).
		Delete(&RouteDTO{})
	return result.RowsAffected, result.Error
}

func (r *GormRouteRepository) DeletePendingForOrders(ctx context.Context, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("id_order IN ?", orderIDs).
		Where(pendingFilter, false, false).
		Delete(&RouteDTO{})
	return result.RowsAffected, result.Error
}

func (r *GormRouteRepository) LockedOrders(ctx context.Context, orderIDs []int64) ([]int64, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var locked []int64
	err := r.db.WithContext(ctx).
		Model(&RouteDTO{}).
		Distinct("id_order").
		Where("id_order IN ?", orderIDs).
		Where("started = ? OR in_progress = ?", true, true).
		Pluck("id_order", &locked).Error
	return locked, err
}

// ListByCourier returns pending and in-progress stops; finished ones are left out.
func (r *GormRouteRepository) ListByCourier(ctx context.Context, courierID kernel.UUID) ([]*route.Stop, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []RouteDTO
	err := r.db.WithContext(ctx).
		Where("motoboy_uid = ?", courierID.Bytes()).
		Where("(started = ? OR in_progress = ?)", false, true).
		Order("ordem ASC, start_time ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	stops := make([]*route.Stop, 0, len(dtos))
	for _, dto := range dtos {
		stop, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}
