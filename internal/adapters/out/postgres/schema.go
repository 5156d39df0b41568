package postgres

import (
	"dispatch/internal/adapters/out/postgres/addressrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/routerepo"
	"dispatch/internal/adapters/out/postgres/taskrepo"

	"gorm.io/gorm"
)

// Tables lists every table touched by the dispatcher, in truncation-safe order.
var Tables = []string{"routes", "dispatch_tasks", "items", "products", "orders", "address", "couriers"}

// Migrate creates or extends the tables the dispatcher reads and writes.
// AutoMigrate only adds missing tables and columns; it never drops data.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&addressrepo.AddressDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.ProductDTO{},
		&orderrepo.ItemDTO{},
		&courierrepo.CourierDTO{},
		&routerepo.RouteDTO{},
		&taskrepo.TaskDTO{},
	)
}
