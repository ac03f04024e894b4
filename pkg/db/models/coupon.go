package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

// Coupon is a redeemable code. Value is an amount in minor units for FIXED
// coupons and a percent for PERCENTAGE coupons.
type Coupon struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code           string           `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Type           enums.CouponType `gorm:"column:type;type:text;not null"`
	Value          decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderAmount int64            `gorm:"column:min_order_amount;not null;default:0"`
	MaxDiscount    *int64           `gorm:"column:max_discount"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	StartsAt       *time.Time       `gorm:"column:starts_at"`
	ExpiresAt      *time.Time       `gorm:"column:expires_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
