package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	assert.ErrorIs(t, queries.GetCouriersQuery{}.Validate(), queries.ErrGetCouriersQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetReadyOrdersQuery{}.Validate(), queries.ErrGetReadyOrdersQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetCourierRoutesQuery{}.Validate(), queries.ErrGetCourierRoutesQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetTaskStatusQuery{}.Validate(), queries.ErrGetTaskStatusQueryIsNotConstructed)
}

func TestNewGetReadyOrdersQuery(t *testing.T) {
	t.Run("defaults to ready statuses", func(t *testing.T) {
		query, err := queries.NewGetReadyOrdersQuery(nil)
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, order.ReadyStatuses(), query.Statuses())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := queries.NewGetReadyOrdersQuery([]order.Status{"teleported"})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewGetCourierRoutesQuery(t *testing.T) {
	id := kernel.NewUUID()

	query, err := queries.NewGetCourierRoutesQuery(id.String())
	require.NoError(t, err)
	assert.True(t, query.CourierID().IsEqual(id))

	_, err = queries.NewGetCourierRoutesQuery("not-a-uuid")
	require.Error(t, err)
}

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) Add(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func TestGetTaskStatusQueryHandler_Handle(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	t.Run("finished task exposes its result", func(t *testing.T) {
		finished := task.NewTask(task.Input{APIKey: "key", PizzeriaAddress: "Rua A, 1", CapacityPerCourier: 3}, now)
		require.NoError(t, finished.Start(now))
		require.NoError(t, finished.Succeed([]byte(`{"status":"dispatched"}`), now.Add(time.Second)))

		repo := new(MockTaskRepository)
		repo.On("Get", ctx, finished.ID()).Return(finished, nil).Once()

		query, err := queries.NewGetTaskStatusQuery(finished.ID().String())
		require.NoError(t, err)
		resp, err := queries.NewGetTaskStatusQueryHandler(repo).Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "SUCCESS", resp.Status)
		assert.JSONEq(t, `{"status":"dispatched"}`, string(resp.Result))
		assert.Empty(t, resp.Error)
		assert.Equal(t, now.Add(time.Second), resp.UpdatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("failed task exposes its error", func(t *testing.T) {
		failed := task.NewTask(task.Input{PizzeriaAddress: "Rua A, 1", CapacityPerCourier: 3}, now)
		require.NoError(t, failed.Fail(errors.New("optimizer unavailable"), now))

		repo := new(MockTaskRepository)
		repo.On("Get", ctx, failed.ID()).Return(failed, nil).Once()

		query, err := queries.NewGetTaskStatusQuery(failed.ID().String())
		require.NoError(t, err)
		resp, err := queries.NewGetTaskStatusQueryHandler(repo).Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "FAILURE", resp.Status)
		assert.Equal(t, "optimizer unavailable", resp.Error)
		assert.Nil(t, resp.Result)
	})

	t.Run("unknown task", func(t *testing.T) {
		id := kernel.NewUUID()
		repo := new(MockTaskRepository)
		repo.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("task", id)).Once()

		query, err := queries.NewGetTaskStatusQuery(id.String())
		require.NoError(t, err)
		_, err = queries.NewGetTaskStatusQueryHandler(repo).Handle(ctx, query)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("query not constructed", func(t *testing.T) {
		repo := new(MockTaskRepository)
		_, err := queries.NewGetTaskStatusQueryHandler(repo).Handle(ctx, queries.GetTaskStatusQuery{})

		require.ErrorIs(t, err, queries.ErrGetTaskStatusQueryIsNotConstructed)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) ListActive(ctx context.Context) ([]kernel.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockCourierRepository) FilterIdle(ctx context.Context, couriers []kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, couriers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func TestCourierAvailability(t *testing.T) {
	ctx := t.Context()
	c1, c2 := kernel.NewUUID(), kernel.NewUUID()

	repo := new(MockCourierRepository)
	mock.InOrder(
		repo.On("ListActive", ctx).Return([]kernel.UUID{c1, c2}, nil).Once(),
		repo.On("FilterIdle", ctx, []kernel.UUID{c1, c2}).Return([]kernel.UUID{c2}, nil).Once(),
	)
	availability := queries.NewCourierAvailability(repo)

	fleet, err := availability.Fleet(ctx)
	require.NoError(t, err)
	idle, err := availability.Idle(ctx, fleet)
	require.NoError(t, err)

	assert.Equal(t, []kernel.UUID{c2}, idle)

	empty, err := availability.Idle(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	repo.AssertExpectations(t)
}
