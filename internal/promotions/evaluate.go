package promotions

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// lineEffect is what one promotion does to one line.
type lineEffect struct {
	discount     int64
	freeQuantity int
}

// value is the customer benefit used to rank competing promotions.
func (e lineEffect) value(unitPrice int64) int64 {
	return e.discount + int64(e.freeQuantity)*unitPrice
}

// evaluateLine applies promo to quantity units at unitPrice. Misconfigured
// rules yield a zero effect.
func evaluateLine(promo models.Promotion, unitPrice int64, quantity int) lineEffect {
	if unitPrice <= 0 || quantity <= 0 {
		return lineEffect{}
	}
	lineTotal := unitPrice * int64(quantity)

	switch promo.Type {
	case enums.PromotionTypeDiscount:
		var amount int64
		switch promo.ValueType {
		case enums.DiscountValueFixed:
			amount = promo.Value.Floor().IntPart() * int64(quantity)
		default:
			amount = percentOf(lineTotal, promo.Value)
		}
		return lineEffect{discount: capDiscount(amount, lineTotal, promo.MaxDiscount)}

	case enums.PromotionTypeBuyXPayY:
		buy, pay := promo.BuyQuantity, promo.PayQuantity
		if buy <= 0 || pay < 0 || pay >= buy {
			return lineEffect{}
		}
		groups := quantity / buy
		amount := int64(groups*(buy-pay)) * unitPrice
		return lineEffect{discount: capDiscount(amount, lineTotal, promo.MaxDiscount)}

	case enums.PromotionTypeBOGO:
		buy := promo.BuyQuantity
		if buy <= 0 {
			buy = 1
		}
		get := promo.GetQuantity
		if get <= 0 {
			get = 1
		}
		return lineEffect{freeQuantity: (quantity / buy) * get}

	case enums.PromotionTypeBuyXGetY:
		if promo.BuyQuantity <= 0 || promo.GetQuantity <= 0 {
			return lineEffect{}
		}
		return lineEffect{freeQuantity: (quantity / promo.BuyQuantity) * promo.GetQuantity}
	}
	return lineEffect{}
}

// evaluateOrder returns the ORDER-scope discount on base, or 0 when the
// promotion does not apply.
func evaluateOrder(promo models.Promotion, base int64) int64 {
	if base <= 0 || base < promo.MinOrderAmount || promo.Type != enums.PromotionTypeDiscount {
		return 0
	}
	var amount int64
	switch promo.ValueType {
	case enums.DiscountValueFixed:
		amount = promo.Value.Floor().IntPart()
	default:
		amount = percentOf(base, promo.Value)
	}
	return capDiscount(amount, base, promo.MaxDiscount)
}

func percentOf(amount int64, percent decimal.Decimal) int64 {
	if percent.IsNegative() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Floor().IntPart()
}

func capDiscount(amount, ceiling int64, max *int64) int64 {
	if amount < 0 {
		return 0
	}
	if max != nil && *max >= 0 && amount > *max {
		amount = *max
	}
	if amount > ceiling {
		amount = ceiling
	}
	return amount
}
