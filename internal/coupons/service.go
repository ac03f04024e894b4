// Package coupons validates coupon codes and computes their discount against
// an order total.
package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

const (
	MessageApplied     = "Coupon applied"
	MessageNotFound    = "Coupon not found"
	MessageInactive    = "Coupon is no longer active"
	MessageNotStarted  = "Coupon is not yet valid"
	MessageExpired     = "Coupon has expired"
	MessageMinOrderFmt = "Order total must be at least %d to use this coupon"
)

var hundred = decimal.NewFromInt(100)

// Service validates coupon codes.
type Service interface {
	Validate(ctx context.Context, req types.CouponRequest) (types.CouponResult, error)
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds the coupon service. now may be nil.
func NewService(repo *Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), now: s.now}
}

// Validate never fails for a bad code; it reports Valid=false with a message.
// Errors are reserved for storage failures.
func (s *service) Validate(ctx context.Context, req types.CouponRequest) (types.CouponResult, error) {
	code := NormalizeCode(req.Code)
	result := types.CouponResult{Code: code}
	if code == "" {
		result.Message = MessageNotFound
		return result, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return types.CouponResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		result.Message = MessageNotFound
		return result, nil
	}

	if msg := s.eligibility(coupon, req.OrderTotal); msg != "" {
		result.Message = msg
		return result, nil
	}

	result.Valid = true
	result.Message = MessageApplied
	result.DiscountAmount = Discount(*coupon, req.OrderTotal)
	return result, nil
}

func (s *service) eligibility(coupon *models.Coupon, orderTotal int64) string {
	now := s.now()
	switch {
	case !coupon.IsActive:
		return MessageInactive
	case coupon.StartsAt != nil && now.Before(*coupon.StartsAt):
		return MessageNotStarted
	case coupon.ExpiresAt != nil && !now.Before(*coupon.ExpiresAt):
		return MessageExpired
	case orderTotal < coupon.MinOrderAmount:
		return fmt.Sprintf(MessageMinOrderFmt, coupon.MinOrderAmount)
	}
	return ""
}

// Discount computes the coupon amount for orderTotal. The result never
// exceeds the order total or the coupon's cap.
func Discount(coupon models.Coupon, orderTotal int64) int64 {
	if orderTotal <= 0 || coupon.Value.IsNegative() {
		return 0
	}

	var amount int64
	switch coupon.Type {
	case enums.CouponTypeFixed:
		amount = coupon.Value.Floor().IntPart()
	case enums.CouponTypePercentage:
		amount = decimal.NewFromInt(orderTotal).Mul(coupon.Value).Div(hundred).Floor().IntPart()
	default:
		return 0
	}

	if coupon.MaxDiscount != nil && *coupon.MaxDiscount >= 0 && amount > *coupon.MaxDiscount {
		amount = *coupon.MaxDiscount
	}
	if amount > orderTotal {
		amount = orderTotal
	}
	return amount
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
