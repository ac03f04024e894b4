package models

import (
	"github.com/google/uuid"
)

// OrderLine is a priced product line of an Order.
type OrderLine struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:order_lines_order_id_idx"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string    `gorm:"column:product_name;not null"`
	UnitPrice    int64     `gorm:"column:unit_price;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Discount     int64     `gorm:"column:discount;not null;default:0"`
	FreeQuantity int       `gorm:"column:free_quantity;not null;default:0"`
}
