package errors

import "github.com/google/uuid"

// StockDetails is attached to CodeStockExceeded errors so callers can show the
// available quantity.
type StockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// StockExceeded builds the rejection returned when a call site refuses to clamp.
func StockExceeded(productID uuid.UUID, requested, available int) *Error {
	return New(CodeStockExceeded, "requested quantity exceeds available stock").
		WithDetails(StockDetails{ProductID: productID, Requested: requested, Available: available})
}

// AvailableStock extracts the available quantity from a stock rejection.
func AvailableStock(err error) (int, bool) {
	typed := As(err)
	if typed == nil || typed.Code() != CodeStockExceeded {
		return 0, false
	}
	details, ok := typed.Details().(StockDetails)
	if !ok {
		return 0, false
	}
	return details.Available, true
}

// CouponInvalid carries the coupon collaborator's message unchanged.
func CouponInvalid(code, message string) *Error {
	if message == "" {
		message = "coupon is not valid"
	}
	return New(CodeCouponInvalid, message).WithDetails(map[string]any{"code": code})
}
