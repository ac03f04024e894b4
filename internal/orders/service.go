// Package orders places orders from a user's authoritative cart, pricing them
// with the same engine the storefront uses for quotes.
package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-commerce/internal/cart"
	"github.com/angelmondragon/storefront-commerce/internal/coupons"
	"github.com/angelmondragon/storefront-commerce/internal/pricing"
	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/internal/promotions"
	"github.com/angelmondragon/storefront-commerce/internal/stock"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order placement and lookup.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req types.CreateOrderRequest, idempotencyKey string) (types.Order, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (types.Order, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo       *Repository
	CartRepo   *cart.Repository
	Products   *products.Repository
	Promotions promotions.Service
	Coupons    coupons.Service
	Tx         txRunner
	Logger     *logger.Logger
}

type service struct {
	repo       *Repository
	cartRepo   *cart.Repository
	products   *products.Repository
	promotions promotions.Service
	coupons    coupons.Service
	tx         txRunner
	logg       *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("order repository required")
	case params.CartRepo == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case params.Promotions == nil:
		return nil, fmt.Errorf("promotion service required")
	case params.Coupons == nil:
		return nil, fmt.Errorf("coupon service required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repo,
		cartRepo:   params.CartRepo,
		products:   params.Products,
		promotions: params.Promotions,
		coupons:    params.Coupons,
		tx:         params.Tx,
		logg:       logg,
	}, nil
}

const previewSavepoint = "promotion_preview"

// previewPromotions runs the preview under a savepoint so a failed query
// leaves the order transaction usable. A nil preview prices without
// promotions.
func (s *service) previewPromotions(ctx context.Context, tx *gorm.DB, promoSvc promotions.Service, current types.Cart) *types.PromotionPreview {
	if err := tx.SavePoint(previewSavepoint).Error; err != nil {
		s.logg.WarnErr(ctx, "promotion preview savepoint failed, pricing without promotions", err)
		return nil
	}
	preview, err := promoSvc.Preview(ctx, types.PreviewRequestFromCart(current))
	if err == nil {
		return &preview
	}
	s.logg.WarnErr(ctx, "promotion preview failed, pricing without promotions", err)
	if rbErr := tx.RollbackTo(previewSavepoint).Error; rbErr != nil {
		s.logg.Error(ctx, "rollback promotion preview", rbErr)
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (types.Order, error) {
	order, err := s.repo.FindByID(ctx, userID, orderID)
	if err != nil {
		return types.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(*order), nil
}

// Create prices the current cart and persists the order. Stock is checked
// with the reject policy: an order is never silently shrunk. The cart is
// cleared in the same transaction. A repeated idempotency key returns the
// order placed the first time.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req types.CreateOrderRequest, idempotencyKey string) (types.Order, error) {
	if userID == uuid.Nil {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if req.ShippingAddress == "" {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	var out types.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if idempotencyKey != "" {
			existing, err := repo.FindByIdempotencyKey(ctx, userID, idempotencyKey)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by idempotency key")
			}
			if existing != nil {
				out = ToDTO(*existing)
				return nil
			}
		}

		current, err := s.loadCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		promoSvc := s.promotions.WithTx(tx)
		preview := s.previewPromotions(ctx, tx, promoSvc, current)

		couponCode := coupons.NormalizeCode(req.CouponCode)
		var couponDiscount int64
		if couponCode != "" {
			res, err := s.coupons.WithTx(tx).Validate(ctx, types.CouponRequest{Code: couponCode, OrderTotal: current.Total})
			if err != nil {
				return err
			}
			if !res.Valid {
				return pkgerrors.CouponInvalid(couponCode, res.Message)
			}
			couponDiscount = res.DiscountAmount
		}

		shipping := promoSvc.ShippingConfig()
		if preview != nil {
			shipping = types.ShippingConfig{ShippingFee: preview.ShippingFee, FreeShippingThreshold: preview.FreeShippingThreshold}
		}
		priced := pricing.Compute(current, preview, couponDiscount, shipping)

		productRepo := s.products.WithTx(tx)
		for _, item := range current.Items {
			ok, err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.StockExceeded(item.ProductID, item.Quantity, item.Stock)
			}
		}

		order := buildOrder(userID, req, couponCode, idempotencyKey, priced)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.cartRepo.WithTx(tx).DeleteAll(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		out = ToDTO(*order)
		return nil
	})
	if err != nil {
		return types.Order{}, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     out.ID.String(),
		"final_amount": out.FinalAmount,
	}), "order placed")
	return out, nil
}

// loadCart reads the cart and validates every line against current stock.
func (s *service) loadCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (types.Cart, error) {
	rows, err := s.cartRepo.WithTx(tx).ListByUser(ctx, userID)
	if err != nil {
		return types.Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(rows) == 0 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	current := types.EmptyCart()
	for _, row := range rows {
		if row.Product == nil || !row.Product.IsActive {
			return types.Cart{}, pkgerrors.New(pkgerrors.CodeConflict, "a product in the cart is no longer available").
				WithDetails(map[string]any{"product_id": row.ProductID})
		}
		if _, err := stock.Resolve(row.ProductID, row.Quantity, row.Product.Stock, stock.PolicyReject); err != nil {
			return types.Cart{}, err
		}
		current.Items = append(current.Items, products.CartItem(*row.Product, row.UnitPrice, row.Quantity))
	}
	current.Recompute()
	return current, nil
}

func buildOrder(userID uuid.UUID, req types.CreateOrderRequest, couponCode, idempotencyKey string, priced pricing.Result) *models.Order {
	lines := make([]models.OrderLine, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		lines = append(lines, models.OrderLine{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
			Discount:     line.Discount,
			FreeQuantity: line.FreeQuantity,
		})
	}
	return &models.Order{
		UserID:                 userID,
		Status:                 enums.OrderStatusPending,
		CouponCode:             stringPtr(couponCode),
		Subtotal:               priced.Subtotal,
		ItemPromotionDiscount:  priced.ItemPromotionDiscount,
		OrderPromotionDiscount: priced.OrderPromotionDiscount,
		CouponDiscount:         priced.CouponDiscount,
		ShippingFee:            priced.ShippingFee,
		FinalAmount:            priced.FinalAmount,
		ShippingAddress:        req.ShippingAddress,
		Note:                   stringPtr(req.Note),
		FreeItems:              priced.FreeItems,
		IdempotencyKey:         stringPtr(idempotencyKey),
		Lines:                  lines,
	}
}
