// Package dbtest opens isolated sqlite databases with the storefront schema
// for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

// Open returns a fresh in-memory database with every model migrated.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// MustCreateProduct inserts an active product with the given price and stock.
func MustCreateProduct(t *testing.T, tx *gorm.DB, name string, price int64, stock int) *models.Product {
	t.Helper()
	image := "https://cdn.example.com/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".jpg"
	product := &models.Product{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", strings.ToLower(strings.ReplaceAll(name, " ", "-")), uuid.NewString()[:8]),
		ImageURL: &image,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateCoupon inserts an active coupon.
func MustCreateCoupon(t *testing.T, tx *gorm.DB, code string, couponType enums.CouponType, value string) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:     code,
		Type:     couponType,
		Value:    decimal.RequireFromString(value),
		IsActive: true,
	}
	if err := tx.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return coupon
}

// MustCreatePromotion inserts the promotion as given, forcing IsActive.
func MustCreatePromotion(t *testing.T, tx *gorm.DB, promo models.Promotion) *models.Promotion {
	t.Helper()
	promo.IsActive = true
	if promo.ValueType == "" {
		promo.ValueType = enums.DiscountValuePercentage
	}
	if err := tx.Create(&promo).Error; err != nil {
		t.Fatalf("create promotion: %v", err)
	}
	return &promo
}
