package enums

import "fmt"

// CouponType controls how a coupon's value is applied to an order total.
type CouponType string

const (
	CouponTypeFixed      CouponType = "FIXED"
	CouponTypePercentage CouponType = "PERCENTAGE"
)

var validCouponTypes = []CouponType{
	CouponTypeFixed,
	CouponTypePercentage,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	for _, candidate := range validCouponTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
