package types

import (
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/google/uuid"
)

// ItemPromotion is the effect one promotion has on one cart line.
type ItemPromotion struct {
	ProductID      uuid.UUID           `json:"product_id"`
	PromotionID    uuid.UUID           `json:"promotion_id"`
	PromotionName  string              `json:"promotion_name"`
	PromotionType  enums.PromotionType `json:"promotion_type"`
	DiscountAmount int64               `json:"discount_amount"`
	FreeQuantity   int                 `json:"free_quantity"`
}

// FreeItem is a zero-charge item granted by BOGO or BUY_X_GET_Y.
type FreeItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	PromotionID uuid.UUID `json:"promotion_id"`
}

// AppliedPromotion identifies the single ORDER-scope promotion in a preview.
type AppliedPromotion struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Type           enums.PromotionType `json:"type"`
	DiscountAmount int64               `json:"discount_amount"`
}

// PromotionPreview is computed by the authoritative store and consumed read-only.
type PromotionPreview struct {
	ItemPromotions        []ItemPromotion   `json:"item_promotions"`
	FreeItems             []FreeItem        `json:"free_items"`
	OrderDiscountAmount   int64             `json:"order_discount_amount"`
	AppliedOrderPromotion *AppliedPromotion `json:"applied_order_promotion,omitempty"`
	ShippingFee           int64             `json:"shipping_fee"`
	FreeShippingThreshold int64             `json:"free_shipping_threshold"`
}

// PreviewLine is one requested line of a promotion preview.
type PreviewLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// PreviewRequest asks for the promotions that apply to a set of lines.
type PreviewRequest struct {
	Items []PreviewLine `json:"items" validate:"dive"`
}

// PreviewRequestFromCart builds a preview request from cart lines.
func PreviewRequestFromCart(cart Cart) PreviewRequest {
	lines := make([]PreviewLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, PreviewLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return PreviewRequest{Items: lines}
}

// CouponRequest asks the authoritative store to validate a code.
type CouponRequest struct {
	Code       string `json:"code" validate:"required"`
	OrderTotal int64  `json:"order_total" validate:"gte=0"`
}

// CouponResult is the outcome of a coupon validation.
type CouponResult struct {
	Valid          bool   `json:"valid"`
	DiscountAmount int64  `json:"discount_amount"`
	Message        string `json:"message"`
	Code           string `json:"code,omitempty"`
}

// ShippingConfig is the flat-rate shipping rule.
type ShippingConfig struct {
	ShippingFee           int64 `json:"shipping_fee"`
	FreeShippingThreshold int64 `json:"free_shipping_threshold"`
}
