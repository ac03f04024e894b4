package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

// Promotion is an automatic price rule. ProductID is set for PRODUCT scope and
// CategoryID for CATEGORY scope; ORDER scope uses neither.
type Promotion struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Name           string                  `gorm:"column:name;not null"`
	Type           enums.PromotionType     `gorm:"column:type;type:text;not null"`
	Scope          enums.PromotionScope    `gorm:"column:scope;type:text;not null"`
	ProductID      *uuid.UUID              `gorm:"column:product_id;type:uuid;index:promotions_product_id_idx"`
	CategoryID     *uuid.UUID              `gorm:"column:category_id;type:uuid;index:promotions_category_id_idx"`
	ValueType      enums.DiscountValueType `gorm:"column:value_type;type:text;not null;default:'PERCENTAGE'"`
	Value          decimal.Decimal         `gorm:"column:value;type:numeric(12,2);not null;default:0"`
	BuyQuantity    int                     `gorm:"column:buy_quantity;not null;default:0"`
	GetQuantity    int                     `gorm:"column:get_quantity;not null;default:0"`
	PayQuantity    int                     `gorm:"column:pay_quantity;not null;default:0"`
	MinOrderAmount int64                   `gorm:"column:min_order_amount;not null;default:0"`
	MaxDiscount    *int64                  `gorm:"column:max_discount"`
	Priority       int                     `gorm:"column:priority;not null;default:0"`
	IsActive       bool                    `gorm:"column:is_active;not null;default:true"`
	StartsAt       *time.Time              `gorm:"column:starts_at"`
	EndsAt         *time.Time              `gorm:"column:ends_at"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
