// Package pricing turns a cart, an optional promotion preview, a validated
// coupon discount and the shipping rule into the payable amount. Compute is
// pure and total: it never fails and never mutates its inputs.
package pricing

import (
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

// Line is one cart line with the promotion effects that touched it.
type Line struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	UnitPrice      int64     `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	LineTotal      int64     `json:"line_total"`
	Discount       int64     `json:"discount"`
	FreeQuantity   int       `json:"free_quantity"`
	PromotionNames []string  `json:"promotion_names,omitempty"`
}

// Result carries every intermediate of the computation.
type Result struct {
	Subtotal               int64            `json:"subtotal"`
	ItemPromotionDiscount  int64            `json:"item_promotion_discount"`
	OrderPromotionDiscount int64            `json:"order_promotion_discount"`
	CouponDiscount         int64            `json:"coupon_discount"`
	SubtotalAfterDiscount  int64            `json:"subtotal_after_discount"`
	IsFreeShipping         bool             `json:"is_free_shipping"`
	ShippingFee            int64            `json:"shipping_fee"`
	FinalAmount            int64            `json:"final_amount"`
	TotalSavings           int64            `json:"total_savings"`
	FreeItems              []types.FreeItem `json:"free_items"`
	Lines                  []Line           `json:"lines"`
	// PreviewApplied is false when the quote degraded to raw cart prices.
	PreviewApplied bool `json:"preview_applied"`
}

// Compute prices cart. A nil preview means no promotion data: promotion
// discounts are zero and no free items are granted, but the coupon and the
// shipping rule still apply.
//
// Order of operations:
//  1. subtotal is the cart total
//  2. item promotions of type DISCOUNT and BUY_X_PAY_Y are summed
//  3. the order-scope discount is taken from the preview
//  4. the coupon discount is taken as given
//  5. the discounted subtotal is floored at zero
//  6. shipping is free when the discounted subtotal reaches the threshold
//  7. the fee is charged otherwise
//  8. final = discounted subtotal + fee
func Compute(cart types.Cart, preview *types.PromotionPreview, couponDiscount int64, shipping types.ShippingConfig) Result {
	res := Result{
		Subtotal:       subtotal(cart),
		CouponDiscount: nonNegative(couponDiscount),
		FreeItems:      []types.FreeItem{},
		Lines:          lines(cart),
		PreviewApplied: preview != nil,
	}

	if preview != nil {
		res.ItemPromotionDiscount = applyItemPromotions(res.Lines, preview.ItemPromotions)
		res.OrderPromotionDiscount = nonNegative(preview.OrderDiscountAmount)
		res.FreeItems = freeItems(preview.FreeItems)
	}

	after := res.Subtotal - res.ItemPromotionDiscount - res.OrderPromotionDiscount - res.CouponDiscount
	res.SubtotalAfterDiscount = nonNegative(after)

	threshold := nonNegative(shipping.FreeShippingThreshold)
	res.IsFreeShipping = res.SubtotalAfterDiscount >= threshold
	if !res.IsFreeShipping {
		res.ShippingFee = nonNegative(shipping.ShippingFee)
	}

	res.FinalAmount = res.SubtotalAfterDiscount + res.ShippingFee
	res.TotalSavings = res.Subtotal - res.SubtotalAfterDiscount
	return res
}

// subtotal is recomputed from the lines; a stored total is never trusted.
func subtotal(cart types.Cart) int64 {
	var total int64
	for _, item := range cart.Items {
		if item.Quantity <= 0 || item.Price <= 0 {
			continue
		}
		total += item.LineTotal()
	}
	return total
}

func lines(cart types.Cart) []Line {
	out := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			continue
		}
		price := nonNegative(item.Price)
		out = append(out, Line{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   price,
			Quantity:    item.Quantity,
			LineTotal:   price * int64(item.Quantity),
		})
	}
	return out
}

// applyItemPromotions sums the subtractive item discounts and annotates the
// matching lines. Free-item promotions only annotate.
func applyItemPromotions(lines []Line, promos []types.ItemPromotion) int64 {
	index := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		index[line.ProductID] = i
	}

	var total int64
	for _, promo := range promos {
		i, onLine := index[promo.ProductID]
		switch {
		case promo.PromotionType.ReducesSubtotal():
			amount := nonNegative(promo.DiscountAmount)
			total += amount
			if onLine {
				lines[i].Discount += amount
				lines[i].PromotionNames = append(lines[i].PromotionNames, promo.PromotionName)
			}
		case promo.PromotionType.GrantsFreeItems():
			if onLine && promo.FreeQuantity > 0 {
				lines[i].FreeQuantity += promo.FreeQuantity
				lines[i].PromotionNames = append(lines[i].PromotionNames, promo.PromotionName)
			}
		}
	}
	return total
}

func freeItems(items []types.FreeItem) []types.FreeItem {
	out := make([]types.FreeItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

