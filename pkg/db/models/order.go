package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// Order is a placed order with the pricing breakdown frozen at placement.
type Order struct {
	ID                     uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID                 uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx;uniqueIndex:orders_user_idempotency_key"`
	Status                 enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	CouponCode             *string           `gorm:"column:coupon_code"`
	Subtotal               int64             `gorm:"column:subtotal;not null"`
	ItemPromotionDiscount  int64             `gorm:"column:item_promotion_discount;not null;default:0"`
	OrderPromotionDiscount int64             `gorm:"column:order_promotion_discount;not null;default:0"`
	CouponDiscount         int64             `gorm:"column:coupon_discount;not null;default:0"`
	ShippingFee            int64             `gorm:"column:shipping_fee;not null;default:0"`
	FinalAmount            int64             `gorm:"column:final_amount;not null"`
	ShippingAddress        string            `gorm:"column:shipping_address;not null"`
	Note                   *string           `gorm:"column:note"`
	FreeItems              []types.FreeItem  `gorm:"column:free_items;type:jsonb;serializer:json"`
	IdempotencyKey         *string           `gorm:"column:idempotency_key;uniqueIndex:orders_user_idempotency_key"`
	Lines                  []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
