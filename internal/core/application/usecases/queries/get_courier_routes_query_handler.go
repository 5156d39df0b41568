package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCourierRoutesQueryHandler reads a courier's route rows ordered by sequence.
type GetCourierRoutesQueryHandler struct {
	db *gorm.DB
}

func NewGetCourierRoutesQueryHandler(db *gorm.DB) GetCourierRoutesQueryHandler {
	return GetCourierRoutesQueryHandler{db: db}
}

// Handle returns every stop of the courier, including started ones. An unknown
// courier yields an empty slice.
func (h GetCourierRoutesQueryHandler) Handle(
	ctx context.Context,
	query GetCourierRoutesQuery,
) ([]GetCourierRoutesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stops := make([]GetCourierRoutesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			id_order,
			ordem,
			tempo_total_minutos,
			start_time,
			started,
			in_progress
		FROM routes
		WHERE motoboy_uid = ?
		ORDER BY ordem, id
	`, query.CourierID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stop GetCourierRoutesQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&stop.OrderID,
			&stop.Sequence,
			&stop.ETAMinutes,
			&stop.StartTime,
			&stop.Started,
			&stop.InProgress,
		)
		if err != nil {
			return nil, err
		}

		stopID, idErr := kernel.UUIDFromString(id.String())
		if idErr != nil {
			return nil, idErr
		}
		stop.StopID = stopID
		stop.ArrivesAt = stop.StartTime.Add(time.Duration(stop.ETAMinutes) * time.Minute)
		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stops, nil
}
