package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCouriersQueryHandler reads couriers and their route load straight from the database.
//
// Example:
//
//	handler := NewGetCouriersQueryHandler(db)
//	couriers, err := handler.Handle(ctx, NewGetCouriersQuery(false))
//	if err != nil {
//	    log.Printf("Failed to get couriers: %v", err)
//	    return err
//	}
type GetCouriersQueryHandler struct {
	db *gorm.DB
}

func NewGetCouriersQueryHandler(db *gorm.DB) GetCouriersQueryHandler {
	return GetCouriersQueryHandler{db: db}
}

// Handle returns couriers sorted by name.
func (h GetCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetCouriersQuery,
) ([]GetCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			c.uid,
			c.name,
			c.active,
			NOT EXISTS (
				SELECT 1 FROM routes r WHERE r.motoboy_uid = c.uid AND r.in_progress
			) AS idle,
			(
				SELECT COUNT(*) FROM routes r
				WHERE r.motoboy_uid = c.uid AND NOT r.started AND NOT r.in_progress
			) AS pending
		FROM couriers c
		WHERE c.active OR NOT ?
		ORDER BY c.name, c.uid
	`, query.ActiveOnly()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var courier GetCouriersQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&courier.Name,
			&courier.Active,
			&courier.Idle,
			&courier.Pending,
		)
		if err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromString(id.String())
		if idErr != nil {
			return nil, idErr
		}
		courier.ID = courierID
		couriers = append(couriers, courier)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
