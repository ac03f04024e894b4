package enums

import "fmt"

// PromotionType describes how a promotion changes the price of a line.
type PromotionType string

const (
	PromotionTypeDiscount PromotionType = "DISCOUNT"
	PromotionTypeBOGO     PromotionType = "BOGO"
	PromotionTypeBuyXGetY PromotionType = "BUY_X_GET_Y"
	PromotionTypeBuyXPayY PromotionType = "BUY_X_PAY_Y"
)

var validPromotionTypes = []PromotionType{
	PromotionTypeDiscount,
	PromotionTypeBOGO,
	PromotionTypeBuyXGetY,
	PromotionTypeBuyXPayY,
}

// String implements fmt.Stringer.
func (p PromotionType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionType.
func (p PromotionType) IsValid() bool {
	for _, candidate := range validPromotionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ReducesSubtotal reports whether the type's discount amount is subtracted
// from the subtotal. BOGO and BUY_X_GET_Y grant free items instead.
func (p PromotionType) ReducesSubtotal() bool {
	return p == PromotionTypeDiscount || p == PromotionTypeBuyXPayY
}

// GrantsFreeItems reports whether the type hands out zero-charge items.
func (p PromotionType) GrantsFreeItems() bool {
	return p == PromotionTypeBOGO || p == PromotionTypeBuyXGetY
}

// ParsePromotionType converts raw input into a PromotionType.
func ParsePromotionType(value string) (PromotionType, error) {
	for _, candidate := range validPromotionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion type %q", value)
}

// PromotionScope limits which lines a promotion applies to.
type PromotionScope string

const (
	PromotionScopeOrder    PromotionScope = "ORDER"
	PromotionScopeProduct  PromotionScope = "PRODUCT"
	PromotionScopeCategory PromotionScope = "CATEGORY"
)

var validPromotionScopes = []PromotionScope{
	PromotionScopeOrder,
	PromotionScopeProduct,
	PromotionScopeCategory,
}

// String implements fmt.Stringer.
func (p PromotionScope) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionScope.
func (p PromotionScope) IsValid() bool {
	for _, candidate := range validPromotionScopes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionScope converts raw input into a PromotionScope.
func ParsePromotionScope(value string) (PromotionScope, error) {
	for _, candidate := range validPromotionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion scope %q", value)
}

// DiscountValueType says whether a DISCOUNT promotion is a percentage or a
// fixed amount per unit.
type DiscountValueType string

const (
	DiscountValuePercentage DiscountValueType = "PERCENTAGE"
	DiscountValueFixed      DiscountValueType = "FIXED"
)

// IsValid reports whether the value is a known DiscountValueType.
func (d DiscountValueType) IsValid() bool {
	return d == DiscountValuePercentage || d == DiscountValueFixed
}
