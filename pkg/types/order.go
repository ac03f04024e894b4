package types

import (
	"time"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/google/uuid"
)

// CreateOrderRequest places an order for the caller's current remote cart.
type CreateOrderRequest struct {
	CouponCode      string `json:"coupon_code,omitempty" validate:"omitempty,max=64"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	Note            string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// OrderLine is a priced line of a placed order.
type OrderLine struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	UnitPrice    int64     `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	Discount     int64     `json:"discount"`
	FreeQuantity int       `json:"free_quantity"`
}

// Order is the confirmation returned after placement.
type Order struct {
	ID                     uuid.UUID         `json:"id"`
	Status                 enums.OrderStatus `json:"status"`
	Lines                  []OrderLine       `json:"lines"`
	FreeItems              []FreeItem        `json:"free_items"`
	CouponCode             string            `json:"coupon_code,omitempty"`
	Subtotal               int64             `json:"subtotal"`
	ItemPromotionDiscount  int64             `json:"item_promotion_discount"`
	OrderPromotionDiscount int64             `json:"order_promotion_discount"`
	CouponDiscount         int64             `json:"coupon_discount"`
	ShippingFee            int64             `json:"shipping_fee"`
	FinalAmount            int64             `json:"final_amount"`
	ShippingAddress        string            `json:"shipping_address"`
	CreatedAt              time.Time         `json:"created_at"`
}
