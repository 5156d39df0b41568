package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/adapters/out/postgres/routerepo"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg   *pgtest.Database
	repo *orderrepo.GormOrderRepository
}

func (s *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.pg = pg
}

func (s *OrderRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate())
	s.repo = orderrepo.NewGormOrderRepository(s.pg.DB)
}

func (s *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.pg.Terminate(context.Background()))
}

func (s *OrderRepositoryIntegrationTestSuite) insertOrder(status order.Status, priority bool, createdAt time.Time) int64 {
	dto := orderrepo.OrderDTO{Status: string(status), Priority: priority, CreatedAt: createdAt}
	s.Require().NoError(s.pg.DB.Create(&dto).Error)
	return dto.ID
}

func (s *OrderRepositoryIntegrationTestSuite) insertRoute(orderID int64, started, inProgress bool) {
	dto := routerepo.RouteDTO{
		ID:         uuid.New(),
		CourierID:  uuid.New(),
		StartTime:  time.Now(),
		Started:    started,
		InProgress: inProgress,
		OrderID:    orderID,
		Sequence:   1,
	}
	s.Require().NoError(s.pg.DB.Create(&dto).Error)
}

func (s *OrderRepositoryIntegrationTestSuite) TestFindReady_FiltersAndOrders() {
	ctx := s.T().Context()
	base := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

	older := s.insertOrder(order.ReadyForDelivery, false, base)
	newerPriority := s.insertOrder(order.AlmostReady, true, base.Add(10*time.Minute))
	newer := s.insertOrder(order.ReadyForDelivery, false, base.Add(5*time.Minute))
	s.insertOrder(order.Delivered, true, base)
	inProgress := s.insertOrder(order.ReadyForDelivery, true, base)
	s.insertRoute(inProgress, true, true)
	pendingOnly := s.insertOrder(order.ReadyForDelivery, false, base.Add(20*time.Minute))
	s.insertRoute(pendingOnly, false, false)

	ready, err := s.repo.FindReady(ctx, order.ReadyStatuses())

	s.Require().NoError(err)
	ids := make([]int64, 0, len(ready))
	for _, r := range ready {
		ids = append(ids, r.OrderID)
	}
	s.Equal([]int64{newerPriority, older, newer, pendingOnly}, ids)
	s.True(ready[0].Priority)
}

func (s *OrderRepositoryIntegrationTestSuite) TestFindReady_EmptyStatusSet() {
	s.insertOrder(order.ReadyForDelivery, false, time.Now())

	ready, err := s.repo.FindReady(s.T().Context(), nil)

	s.Require().NoError(err)
	s.Empty(ready)
}

func (s *OrderRepositoryIntegrationTestSuite) TestCountPizzas() {
	ctx := s.T().Context()
	orderID := s.insertOrder(order.ReadyForDelivery, false, time.Now())
	other := s.insertOrder(order.ReadyForDelivery, false, time.Now())

	pizza := orderrepo.ProductDTO{Name: "Calabresa", Category: "Pizza Salgada"}
	drink := orderrepo.ProductDTO{Name: "Guaraná", Category: "Bebidas"}
	border := orderrepo.ProductDTO{Name: "Borda Catupiry", Category: "pizza extras"}
	s.Require().NoError(s.pg.DB.Create(&pizza).Error)
	s.Require().NoError(s.pg.DB.Create(&drink).Error)
	s.Require().NoError(s.pg.DB.Create(&border).Error)

	parent := orderrepo.ItemDTO{OrderID: orderID, ProductID: pizza.ID, Quantity: 2}
	s.Require().NoError(s.pg.DB.Create(&parent).Error)
	items := []orderrepo.ItemDTO{
		{OrderID: orderID, ProductID: border.ID, Quantity: 2, RelationID: &parent.ID},
		{OrderID: orderID, ProductID: drink.ID, Quantity: 3},
		{OrderID: orderID, ProductID: pizza.ID, Quantity: 1},
		{OrderID: other, ProductID: pizza.ID, Quantity: 5},
	}
	s.Require().NoError(s.pg.DB.Create(&items).Error)

	count, err := s.repo.CountPizzas(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(3, count)

	none, err := s.repo.CountPizzas(ctx, 9999)
	s.Require().NoError(err)
	s.Zero(none)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
