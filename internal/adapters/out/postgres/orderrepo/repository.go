package orderrepo

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

const lockedRouteFilter = `NOT EXISTS (
	SELECT 1 FROM routes r
	WHERE r.id_order = orders.id AND (r.in_progress OR r.started)
)`

const pizzaCountQuery = `
SELECT COALESCE(SUM(i.qtd), 0)
FROM items i
JOIN products p ON p.id = i.id_product
WHERE i.id_order = ?
  AND i.relation_id IS NULL
  AND p.category ILIKE '%pizza%'`

// GormOrderRepository implements ports.OrderReader and ports.PizzaCounter.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindReady selects orders in one of statuses that no courier has started yet.
func (r *GormOrderRepository) FindReady(ctx context.Context, statuses []order.Status) ([]ports.ReadyOrder, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status IN ?", order.StatusStrings(statuses)).
		Where(lockedRouteFilter).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	ready := make([]ports.ReadyOrder, 0, len(dtos))
	for _, dto := range dtos {
		ready = append(ready, ports.ReadyOrder{
			OrderID:   dto.ID,
			AddressID: dto.AddressID,
			Priority:  dto.Priority,
			CreatedAt: dto.CreatedAt,
		})
	}
	return ready, nil
}

// CountPizzas sums the quantity of top-level items whose product is a pizza.
func (r *GormOrderRepository) CountPizzas(ctx context.Context, orderID int64) (int, error) {
	var total int
	if err := r.db.WithContext(ctx).Raw(pizzaCountQuery, orderID).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
