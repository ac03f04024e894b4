package orders

import (
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// ToDTO converts the persisted order into its API shape.
func ToDTO(order models.Order) types.Order {
	lines := make([]types.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, types.OrderLine{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
			Discount:     line.Discount,
			FreeQuantity: line.FreeQuantity,
		})
	}
	freeItems := order.FreeItems
	if freeItems == nil {
		freeItems = []types.FreeItem{}
	}
	out := types.Order{
		ID:                     order.ID,
		Status:                 order.Status,
		Lines:                  lines,
		FreeItems:              freeItems,
		Subtotal:               order.Subtotal,
		ItemPromotionDiscount:  order.ItemPromotionDiscount,
		OrderPromotionDiscount: order.OrderPromotionDiscount,
		CouponDiscount:         order.CouponDiscount,
		ShippingFee:            order.ShippingFee,
		FinalAmount:            order.FinalAmount,
		ShippingAddress:        order.ShippingAddress,
		CreatedAt:              order.CreatedAt,
	}
	if order.CouponCode != nil {
		out.CouponCode = *order.CouponCode
	}
	return out
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
