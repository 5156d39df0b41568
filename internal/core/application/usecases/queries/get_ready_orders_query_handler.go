package queries

import (
	"context"
	"strings"

	"dispatch/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetReadyOrdersQueryHandler reads the dispatch backlog, in the order the
// collector sees it.
type GetReadyOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetReadyOrdersQueryHandler(db *gorm.DB) GetReadyOrdersQueryHandler {
	return GetReadyOrdersQueryHandler{db: db}
}

// Handle returns orders in one of the query statuses that are not on a started
// or in-progress route, explicit priority first, then oldest first.
func (h GetReadyOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetReadyOrdersQuery,
) ([]GetReadyOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetReadyOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.status,
			o.priority,
			o.created_at,
			a.street,
			a.number,
			a.district,
			a.city,
			a.state,
			COALESCE(a.latitude IS NOT NULL AND a.longitude IS NOT NULL, false) AS geocoded
		FROM orders o
		LEFT JOIN address a ON a.id = o.address_id
		WHERE o.status IN ?
		  AND NOT EXISTS (
			SELECT 1 FROM routes r
			WHERE r.id_order = o.id AND (r.in_progress OR r.started)
		  )
		ORDER BY o.priority DESC, o.created_at ASC, o.id ASC
	`, order.StatusStrings(query.Statuses())).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetReadyOrdersQueryResponse
		var street, number, district, city, state *string

		err = rows.Scan(
			&resp.OrderID,
			&resp.Status,
			&resp.Priority,
			&resp.CreatedAt,
			&street,
			&number,
			&district,
			&city,
			&state,
			&resp.Geocoded,
		)
		if err != nil {
			return nil, err
		}

		resp.Address = joinAddress(street, number, district, city, state)
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func joinAddress(parts ...*string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != nil && strings.TrimSpace(*p) != "" {
			out = append(out, strings.TrimSpace(*p))
		}
	}
	return strings.Join(out, ", ")
}
