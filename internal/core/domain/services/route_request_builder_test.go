package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vrp"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCoordinates(t *testing.T, lon, lat float64) kernel.Coordinates {
	t.Helper()
	c, err := kernel.NewCoordinates(lon, lat)
	require.NoError(t, err)
	return c
}

func geocodedCandidate(t *testing.T, id int64, priority bool, createdAt time.Time, lon, lat float64) *order.Candidate {
	t.Helper()
	c := newCandidate(t, id, priority, createdAt)
	require.NoError(t, c.Locate(mustCoordinates(t, lon, lat)))
	return c
}

func TestRouteRequestBuilder_Build(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	depot := mustCoordinates(t, -47.88, -21.04)
	scorer, err := services.NewPriorityScorer(waitLimit)
	require.NoError(t, err)
	builder := services.NewRouteRequestBuilder()

	t.Run("one job per geocoded candidate and one vehicle per courier", func(t *testing.T) {
		a := geocodedCandidate(t, 100, true, now, -47.87, -21.03)
		b := geocodedCandidate(t, 200, false, now.Add(-2000*time.Second), -47.86, -21.02)
		notGeocoded := newCandidate(t, 300, false, now.Add(-time.Hour))
		couriers := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

		plan, err := builder.Build(scorer.Order([]*order.Candidate{a, b, notGeocoded}, now), couriers, depot, 4)

		require.NoError(t, err)
		require.NoError(t, plan.Request.Validate())
		require.Len(t, plan.Request.Jobs, 2)
		require.Len(t, plan.Request.Vehicles, 2)

		job := plan.Request.Jobs[0]
		assert.Equal(t, 1, job.ID)
		assert.Equal(t, vrp.ServiceSeconds, job.Service)
		assert.Equal(t, []int{1}, job.Amount)
		assert.Equal(t, vrp.MaxPriority, job.Priority)
		assert.Equal(t, [2]float64{-47.87, -21.03}, job.Location.Pair())
		assert.Equal(t, 5, plan.Request.Jobs[1].Priority)
		assert.Equal(t, int64(200), plan.JobCandidates[2].OrderID())

		for i, v := range plan.Request.Vehicles {
			assert.Equal(t, i+1, v.ID)
			assert.Equal(t, vrp.ProfileDrivingCar, v.Profile)
			assert.True(t, v.Start.IsEqual(depot))
			assert.True(t, v.End.IsEqual(depot))
			assert.Equal(t, []int{4}, v.Capacity)
			assert.True(t, plan.VehicleCouriers[v.ID].IsEqual(couriers[i]))
		}
		assert.Equal(t, couriers, plan.CourierIDs())
	})

	t.Run("no couriers", func(t *testing.T) {
		a := geocodedCandidate(t, 1, false, now, -47.87, -21.03)

		_, err := builder.Build(scorer.Order([]*order.Candidate{a}, now), nil, depot, 4)

		require.ErrorIs(t, err, services.ErrEmptyRequest)
	})

	t.Run("no geocoded candidates", func(t *testing.T) {
		c := newCandidate(t, 1, false, now)

		_, err := builder.Build(scorer.Order([]*order.Candidate{c}, now), []kernel.UUID{kernel.NewUUID()}, depot, 4)

		require.ErrorIs(t, err, services.ErrEmptyRequest)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := builder.Build(nil, []kernel.UUID{kernel.NewUUID()}, depot, 0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("invalid depot", func(t *testing.T) {
		_, err := builder.Build(nil, []kernel.UUID{kernel.NewUUID()}, kernel.Coordinates{}, 4)
		require.ErrorIs(t, err, kernel.ErrCoordinatesIsNotConstructed)
	})
}
