// Package promotions evaluates automatic promotions for a set of cart lines
// and produces the preview the pricing engine consumes.
package promotions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// Service computes promotion previews.
type Service interface {
	Preview(ctx context.Context, req types.PreviewRequest) (types.PromotionPreview, error)
	ShippingConfig() types.ShippingConfig
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo     *Repository
	products *products.Repository
	shipping types.ShippingConfig
	now      func() time.Time
}

// NewService builds the promotion service.
func NewService(repo *Repository, productRepo *products.Repository, shipping types.ShippingConfig, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, products: productRepo, shipping: shipping, now: now}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), products: s.products.WithTx(tx), shipping: s.shipping, now: s.now}
}

func (s *service) ShippingConfig() types.ShippingConfig {
	return s.shipping
}

// Preview picks at most one PRODUCT or CATEGORY promotion per line, the one
// worth most to the customer, then at most one ORDER promotion evaluated on the
// subtotal left after item discounts.
func (s *service) Preview(ctx context.Context, req types.PreviewRequest) (types.PromotionPreview, error) {
	preview := types.PromotionPreview{
		ItemPromotions:        []types.ItemPromotion{},
		FreeItems:             []types.FreeItem{},
		ShippingFee:           s.shipping.ShippingFee,
		FreeShippingThreshold: s.shipping.FreeShippingThreshold,
	}

	quantities, order := collapse(req.Items)
	if len(order) == 0 {
		return preview, nil
	}

	catalog, err := s.products.FindByIDs(ctx, order)
	if err != nil {
		return types.PromotionPreview{}, err
	}
	promos, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return types.PromotionPreview{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotions")
	}

	var subtotal, itemDiscount int64
	for _, productID := range order {
		product, ok := catalog[productID]
		if !ok || !product.IsActive {
			continue
		}
		qty := quantities[productID]
		subtotal += product.Price * int64(qty)

		promo, effect, found := bestLinePromotion(promos, product, qty)
		if !found {
			continue
		}
		preview.ItemPromotions = append(preview.ItemPromotions, types.ItemPromotion{
			ProductID:      productID,
			PromotionID:    promo.ID,
			PromotionName:  promo.Name,
			PromotionType:  promo.Type,
			DiscountAmount: effect.discount,
			FreeQuantity:   effect.freeQuantity,
		})
		itemDiscount += effect.discount
		if effect.freeQuantity > 0 {
			preview.FreeItems = append(preview.FreeItems, types.FreeItem{
				ProductID:   productID,
				ProductName: product.Name,
				Quantity:    effect.freeQuantity,
				PromotionID: promo.ID,
			})
		}
	}

	base := subtotal - itemDiscount
	var best *models.Promotion
	var bestAmount int64
	for i := range promos {
		if promos[i].Scope != enums.PromotionScopeOrder {
			continue
		}
		if amount := evaluateOrder(promos[i], base); amount > bestAmount {
			best, bestAmount = &promos[i], amount
		}
	}
	if best != nil {
		preview.OrderDiscountAmount = bestAmount
		preview.AppliedOrderPromotion = &types.AppliedPromotion{
			ID:             best.ID,
			Name:           best.Name,
			Type:           best.Type,
			DiscountAmount: bestAmount,
		}
	}
	return preview, nil
}

func bestLinePromotion(promos []models.Promotion, product models.Product, qty int) (models.Promotion, lineEffect, bool) {
	var (
		best      models.Promotion
		bestValue int64
		bestFx    lineEffect
		found     bool
	)
	for _, promo := range promos {
		if !targets(promo, product) {
			continue
		}
		effect := evaluateLine(promo, product.Price, qty)
		value := effect.value(product.Price)
		if value <= 0 {
			continue
		}
		if !found || value > bestValue {
			best, bestValue, bestFx, found = promo, value, effect, true
		}
	}
	return best, bestFx, found
}

func targets(promo models.Promotion, product models.Product) bool {
	switch promo.Scope {
	case enums.PromotionScopeProduct:
		return promo.ProductID != nil && *promo.ProductID == product.ID
	case enums.PromotionScopeCategory:
		return promo.CategoryID != nil && product.CategoryID != nil && *promo.CategoryID == *product.CategoryID
	}
	return false
}

func collapse(lines []types.PreviewLine) (map[uuid.UUID]int, []uuid.UUID) {
	quantities := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil || line.Quantity <= 0 {
			continue
		}
		if _, seen := quantities[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	return quantities, order
}
