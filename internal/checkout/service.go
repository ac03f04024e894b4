// Package checkout prices the session's cart and places orders.
package checkout

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/pricing"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"go.uber.org/multierr"
)

// Session is the part of a commerce session checkout depends on.
type Session interface {
	Cart(ctx context.Context) (types.Cart, error)
	State() commerce.AuthState
	Remote() remote.Client
	ClearCart(ctx context.Context) commerce.Mutation[types.Cart]
	ClearLocalCart(ctx context.Context)
}

// Catalog is the public, unauthenticated part of the authoritative store.
type Catalog interface {
	remote.PromotionClient
	remote.CouponClient
	remote.ShippingClient
}

type QuoteInput struct {
	CouponCode string
}

// Quote is a priced cart.
type Quote struct {
	Cart    types.Cart          `json:"cart"`
	Pricing pricing.Result      `json:"pricing"`
	Coupon  *types.CouponResult `json:"coupon,omitempty"`
}

type PlaceOrderInput struct {
	CouponCode      string
	ShippingAddress string
	Note            string
	IdempotencyKey  string
}

type Service struct {
	session  Session
	catalog  Catalog
	shipping types.ShippingConfig
	logg     *logger.Logger
	metrics  *metrics.CommerceMetrics
}

// NewService builds a checkout for session. fallback is used when neither the
// preview nor the store can provide the shipping rule.
func NewService(session Session, catalog Catalog, fallback types.ShippingConfig, logg *logger.Logger, m *metrics.CommerceMetrics) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{session: session, catalog: catalog, shipping: fallback, logg: logg, metrics: m}
}

// Quote prices the current cart. A missing promotion preview degrades to raw
// prices; an invalid coupon fails with COUPON_INVALID and the store's message.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	cart, err := s.session.Cart(ctx)
	if err != nil {
		return Quote{}, err
	}

	preview := s.preview(ctx, cart)

	var coupon *types.CouponResult
	var couponDiscount int64
	if code := strings.TrimSpace(in.CouponCode); code != "" {
		result, err := s.catalog.ValidateCoupon(ctx, types.CouponRequest{Code: code, OrderTotal: cart.Total})
		if err != nil {
			return Quote{}, err
		}
		if !result.Valid {
			return Quote{}, pkgerrors.CouponInvalid(code, result.Message)
		}
		result.Code = code
		coupon = &result
		couponDiscount = result.DiscountAmount
	}

	return Quote{
		Cart:    cart,
		Pricing: pricing.Compute(cart, preview, couponDiscount, s.shippingFor(ctx, preview)),
		Coupon:  coupon,
	}, nil
}

func (s *Service) preview(ctx context.Context, cart types.Cart) *types.PromotionPreview {
	if cart.IsEmpty() {
		return nil
	}
	preview, err := s.catalog.PreviewPromotions(ctx, types.PreviewRequestFromCart(cart))
	if err != nil {
		s.logg.WarnErr(ctx, "promotion preview unavailable, pricing without promotions", err)
		s.metrics.IncPreviewFallback()
		return nil
	}
	return &preview
}

func (s *Service) shippingFor(ctx context.Context, preview *types.PromotionPreview) types.ShippingConfig {
	if preview != nil && (preview.ShippingFee > 0 || preview.FreeShippingThreshold > 0) {
		return types.ShippingConfig{ShippingFee: preview.ShippingFee, FreeShippingThreshold: preview.FreeShippingThreshold}
	}
	cfg, err := s.catalog.ShippingConfig(ctx)
	if err != nil {
		s.logg.WarnErr(ctx, "shipping config unavailable, using defaults", err)
		return s.shipping
	}
	return cfg
}

// PlaceOrder creates the order through the authenticated store and then
// clears the cart whatever the clean-up outcome.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (types.Order, error) {
	client := s.session.Remote()
	if s.session.State() != commerce.StateAuthenticated || client == nil {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}

	order, err := client.CreateOrder(ctx, types.CreateOrderRequest{
		CouponCode:      strings.TrimSpace(in.CouponCode),
		ShippingAddress: in.ShippingAddress,
		Note:            in.Note,
	}, in.IdempotencyKey)
	if err != nil {
		return types.Order{}, err
	}

	s.session.ClearLocalCart(ctx)
	var cleanup error
	if m := s.session.ClearCart(ctx); m.Err != nil {
		cleanup = multierr.Append(cleanup, m.Err)
	}
	if cleanup != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id":       order.ID.String(),
			"cleanup_errors": len(multierr.Errors(cleanup)),
		})
		s.logg.Error(ctx, "order placed but cart clean-up failed", cleanup)
	}
	return order, nil
}
