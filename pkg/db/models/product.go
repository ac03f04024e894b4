package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row carts and wishlists denormalize from.
type Product struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	Slug       string     `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	ImageURL   *string    `gorm:"column:image_url"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid;index:products_category_id_idx"`
	Price      int64      `gorm:"column:price;not null"`
	Stock      int        `gorm:"column:stock;not null;default:0"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
