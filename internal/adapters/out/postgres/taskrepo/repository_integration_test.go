package taskrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/adapters/out/postgres/taskrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type TaskRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg   *pgtest.Database
	repo *taskrepo.GormTaskRepository
}

func (s *TaskRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.pg = pg
}

func (s *TaskRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate())
	s.repo = taskrepo.NewGormTaskRepository(s.pg.DB)
}

func (s *TaskRepositoryIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.pg.Terminate(context.Background()))
}

func (s *TaskRepositoryIntegrationTestSuite) TestLifecycle() {
	ctx := s.T().Context()
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	t := task.NewTask(task.Input{
		APIKey:             "secret",
		PizzeriaAddress:    "Rua A, 1, Centro",
		CapacityPerCourier: 3,
		TriggeredBy:        "http",
	}, now)
	s.Require().NoError(s.repo.Add(ctx, t))

	s.Require().NoError(t.Start(now.Add(time.Second)))
	s.Require().NoError(s.repo.Update(ctx, t))
	s.Require().NoError(t.Succeed([]byte(`{"assigned":2}`), now.Add(2*time.Second)))
	s.Require().NoError(s.repo.Update(ctx, t))

	loaded, err := s.repo.Get(ctx, t.ID())

	s.Require().NoError(err)
	s.Equal(task.Success, loaded.Status())
	s.JSONEq(`{"assigned":2}`, string(loaded.Result()))
	s.Equal(3, loaded.Input().CapacityPerCourier)
	s.Empty(loaded.Input().APIKey, "API key must never be persisted")
}

func (s *TaskRepositoryIntegrationTestSuite) TestFailureKeepsErrorText() {
	ctx := s.T().Context()
	now := time.Now().UTC()
	t := task.NewTask(task.Input{PizzeriaAddress: "Rua A, 1, Centro", CapacityPerCourier: 1}, now)
	s.Require().NoError(s.repo.Add(ctx, t))
	s.Require().NoError(t.Fail(errors.New("optimizer failed"), now))
	s.Require().NoError(s.repo.Update(ctx, t))

	loaded, err := s.repo.Get(ctx, t.ID())

	s.Require().NoError(err)
	s.Equal(task.Failure, loaded.Status())
	s.Equal("optimizer failed", loaded.ErrorText())
}

func (s *TaskRepositoryIntegrationTestSuite) TestUnknownTask() {
	ctx := s.T().Context()

	_, err := s.repo.Get(ctx, kernel.NewUUID())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	ghost := task.NewTask(task.Input{CapacityPerCourier: 1}, time.Now())
	err = s.repo.Update(ctx, ghost)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestTaskRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(TaskRepositoryIntegrationTestSuite))
}
