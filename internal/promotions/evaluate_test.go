package promotions

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

func TestEvaluateLine(t *testing.T) {
	cap5000 := int64(5000)
	cases := []struct {
		name  string
		promo models.Promotion
		price int64
		qty   int
		want  lineEffect
	}{
		{
			name:  "percentage discount",
			promo: models.Promotion{Type: enums.PromotionTypeDiscount, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(20)},
			price: 10000, qty: 3,
			want: lineEffect{discount: 6000},
		},
		{
			name:  "percentage discount with cap",
			promo: models.Promotion{Type: enums.PromotionTypeDiscount, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(20), MaxDiscount: &cap5000},
			price: 10000, qty: 3,
			want: lineEffect{discount: 5000},
		},
		{
			name:  "fixed per unit bounded by line total",
			promo: models.Promotion{Type: enums.PromotionTypeDiscount, ValueType: enums.DiscountValueFixed, Value: decimal.NewFromInt(4000)},
			price: 3000, qty: 2,
			want: lineEffect{discount: 6000},
		},
		{
			name:  "buy 3 pay 2",
			promo: models.Promotion{Type: enums.PromotionTypeBuyXPayY, BuyQuantity: 3, PayQuantity: 2},
			price: 5000, qty: 7,
			want: lineEffect{discount: 10000},
		},
		{
			name:  "buy x pay y misconfigured",
			promo: models.Promotion{Type: enums.PromotionTypeBuyXPayY, BuyQuantity: 2, PayQuantity: 2},
			price: 5000, qty: 4,
		},
		{
			name:  "bogo defaults",
			promo: models.Promotion{Type: enums.PromotionTypeBOGO},
			price: 5000, qty: 3,
			want: lineEffect{freeQuantity: 3},
		},
		{
			name:  "buy 2 get 1",
			promo: models.Promotion{Type: enums.PromotionTypeBuyXGetY, BuyQuantity: 2, GetQuantity: 1},
			price: 5000, qty: 5,
			want: lineEffect{freeQuantity: 2},
		},
		{
			name:  "unknown type",
			promo: models.Promotion{Type: "MYSTERY"},
			price: 5000, qty: 5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluateLine(tc.promo, tc.price, tc.qty)
			if got != tc.want {
				t.Fatalf("evaluateLine() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEvaluateOrder(t *testing.T) {
	promo := models.Promotion{
		Type:           enums.PromotionTypeDiscount,
		ValueType:      enums.DiscountValuePercentage,
		Value:          decimal.NewFromInt(10),
		MinOrderAmount: 100000,
	}
	if got := evaluateOrder(promo, 99999); got != 0 {
		t.Fatalf("below minimum: got %d", got)
	}
	if got := evaluateOrder(promo, 200000); got != 20000 {
		t.Fatalf("expected 20000, got %d", got)
	}
	promo.Type = enums.PromotionTypeBOGO
	if got := evaluateOrder(promo, 200000); got != 0 {
		t.Fatalf("non-discount order promotion must not apply, got %d", got)
	}
}
