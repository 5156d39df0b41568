// Package orderrepo reads dispatch candidates from the orders, items and products tables.
// The tables are written by the ordering side of the system; this package only reads them.
package orderrepo

import "time"

// OrderDTO maps the orders table.
type OrderDTO struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	AddressID *int64 `gorm:"index"`
	Status    string `gorm:"index"`
	Priority  bool
	CreatedAt time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO maps an order line. Lines with a relation id are add-ons of another line.
type ItemDTO struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	OrderID    int64  `gorm:"column:id_order;index"`
	ProductID  int64  `gorm:"column:id_product"`
	Quantity   int    `gorm:"column:qtd"`
	RelationID *int64 `gorm:"column:relation_id"`
}

func (ItemDTO) TableName() string {
	return "items"
}

// ProductDTO maps the product catalogue; Category holds labels such as "Pizza Salgada".
type ProductDTO struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	Name     string
	Category string
}

func (ProductDTO) TableName() string {
	return "products"
}
