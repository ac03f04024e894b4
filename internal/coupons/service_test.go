package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-commerce/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

func int64Ptr(v int64) *int64 { return &v }

func TestDiscount(t *testing.T) {
	cases := []struct {
		name   string
		coupon models.Coupon
		total  int64
		want   int64
	}{
		{"fixed", models.Coupon{Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(10000)}, 50000, 10000},
		{"fixed capped at total", models.Coupon{Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(10000)}, 4000, 4000},
		{"percentage", models.Coupon{Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(15)}, 200000, 30000},
		{"percentage rounds down", models.Coupon{Type: enums.CouponTypePercentage, Value: decimal.RequireFromString("12.5")}, 999, 124},
		{"percentage with cap", models.Coupon{Type: enums.CouponTypePercentage, Value: decimal.NewFromInt(50), MaxDiscount: int64Ptr(20000)}, 200000, 20000},
		{"zero total", models.Coupon{Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(500)}, 0, 0},
		{"unknown type", models.Coupon{Type: "BONUS", Value: decimal.NewFromInt(500)}, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Discount(tc.coupon, tc.total))
		})
	}
}

func TestService_Validate(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(conn), func() time.Time { return now })
	require.NoError(t, err)
	ctx := context.Background()

	dbtest.MustCreateCoupon(t, conn, "SAVE10", enums.CouponTypePercentage, "10")
	minOrder := dbtest.MustCreateCoupon(t, conn, "BIGSPEND", enums.CouponTypeFixed, "50000")
	require.NoError(t, conn.Model(minOrder).Update("min_order_amount", 300000).Error)
	expired := dbtest.MustCreateCoupon(t, conn, "OLD", enums.CouponTypeFixed, "1000")
	require.NoError(t, conn.Model(expired).Update("expires_at", now.Add(-time.Hour)).Error)
	inactive := dbtest.MustCreateCoupon(t, conn, "OFF", enums.CouponTypeFixed, "1000")
	require.NoError(t, conn.Model(inactive).Update("is_active", false).Error)

	res, err := svc.Validate(ctx, types.CouponRequest{Code: " save10 ", OrderTotal: 250000})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(25000), res.DiscountAmount)
	assert.Equal(t, "SAVE10", res.Code)

	res, err = svc.Validate(ctx, types.CouponRequest{Code: "BIGSPEND", OrderTotal: 100000})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "300000")
	assert.Zero(t, res.DiscountAmount)

	res, err = svc.Validate(ctx, types.CouponRequest{Code: "OLD", OrderTotal: 100000})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageExpired, res.Message)

	res, err = svc.Validate(ctx, types.CouponRequest{Code: "OFF", OrderTotal: 100000})
	require.NoError(t, err)
	assert.Equal(t, MessageInactive, res.Message)

	res, err = svc.Validate(ctx, types.CouponRequest{Code: "NOPE", OrderTotal: 100000})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageNotFound, res.Message)
}
