package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/localstore"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fallbackShipping = types.ShippingConfig{ShippingFee: 30000, FreeShippingThreshold: 500000}

type fakeCatalog struct {
	preview     *types.PromotionPreview
	previewErr  error
	coupon      types.CouponResult
	couponErr   error
	shipping    types.ShippingConfig
	shippingErr error
	couponReqs  []types.CouponRequest
}

func (f *fakeCatalog) PreviewPromotions(context.Context, types.PreviewRequest) (types.PromotionPreview, error) {
	if f.previewErr != nil {
		return types.PromotionPreview{}, f.previewErr
	}
	if f.preview == nil {
		return types.PromotionPreview{}, nil
	}
	return *f.preview, nil
}

func (f *fakeCatalog) ValidateCoupon(_ context.Context, req types.CouponRequest) (types.CouponResult, error) {
	f.couponReqs = append(f.couponReqs, req)
	return f.coupon, f.couponErr
}

func (f *fakeCatalog) ShippingConfig(context.Context) (types.ShippingConfig, error) {
	return f.shipping, f.shippingErr
}

// orderingRemote implements the remote calls checkout needs; anything else
// panics through the nil embedded interface.
type orderingRemote struct {
	remote.Client
	cart     types.Cart
	order    types.Order
	orderErr error
	clearErr error
	keys     []string
	cleared  int
}

func (o *orderingRemote) GetCart(context.Context) (types.Cart, error) { return o.cart, nil }

func (o *orderingRemote) MergeCart(context.Context, types.MergeCartRequest) (types.Cart, error) {
	return o.cart, nil
}

func (o *orderingRemote) MergeWishlist(context.Context, types.MergeWishlistRequest) (types.Wishlist, error) {
	return types.EmptyWishlist(), nil
}

func (o *orderingRemote) CreateOrder(_ context.Context, _ types.CreateOrderRequest, key string) (types.Order, error) {
	o.keys = append(o.keys, key)
	return o.order, o.orderErr
}

func (o *orderingRemote) ClearCart(context.Context) error {
	o.cleared++
	return o.clearErr
}

func newSession() *commerce.Session {
	storage := localstore.NewMemoryStorage()
	return commerce.NewSession(commerce.Options{
		Cart:     localstore.NewCartStore(localstore.Options{Storage: storage}),
		Wishlist: localstore.NewWishlistStore(localstore.Options{Storage: storage}),
	})
}

func TestQuoteScenarioA(t *testing.T) {
	ctx := context.Background()
	session := newSession()
	shirt := types.CartItem{ProductID: uuid.New(), Price: 250000, Stock: 10}
	session.AddToCart(ctx, shirt, 2)

	catalog := &fakeCatalog{
		preview: &types.PromotionPreview{
			ItemPromotions: []types.ItemPromotion{{
				ProductID: shirt.ProductID, PromotionType: enums.PromotionTypeDiscount, DiscountAmount: 50000,
			}},
			ShippingFee:           30000,
			FreeShippingThreshold: 500000,
		},
		coupon: types.CouponResult{Valid: true, DiscountAmount: 20000, Message: "Coupon applied"},
	}
	svc := NewService(session, catalog, fallbackShipping, nil, nil)

	quote, err := svc.Quote(ctx, QuoteInput{CouponCode: " SAVE20 "})
	require.NoError(t, err)

	assert.Equal(t, int64(460000), quote.Pricing.FinalAmount)
	assert.Equal(t, int64(430000), quote.Pricing.SubtotalAfterDiscount)
	assert.False(t, quote.Pricing.IsFreeShipping)
	require.NotNil(t, quote.Coupon)
	assert.Equal(t, "SAVE20", quote.Coupon.Code)
	require.Len(t, catalog.couponReqs, 1)
	assert.Equal(t, int64(500000), catalog.couponReqs[0].OrderTotal, "coupon is validated against the subtotal")
}

func TestQuoteInvalidCouponSurfacesServerMessage(t *testing.T) {
	ctx := context.Background()
	session := newSession()
	session.AddToCart(ctx, types.CartItem{ProductID: uuid.New(), Price: 1000, Stock: 1}, 1)
	cartBefore, _ := session.Cart(ctx)

	catalog := &fakeCatalog{coupon: types.CouponResult{Valid: false, Message: "Minimum order is 200000"}}
	svc := NewService(session, catalog, fallbackShipping, nil, nil)

	_, err := svc.Quote(ctx, QuoteInput{CouponCode: "BIG"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.KindCouponInvalid, pkgerrors.KindOf(err))
	assert.Equal(t, "Minimum order is 200000", pkgerrors.As(err).Message())

	cartAfter, _ := session.Cart(ctx)
	assert.Equal(t, cartBefore, cartAfter, "coupon failure must not touch the cart")
}

func TestQuoteDegradesWithoutPreview(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	session := newSession()
	session.AddToCart(ctx, types.CartItem{ProductID: uuid.New(), Price: 100000, Stock: 9}, 3)

	catalog := &fakeCatalog{
		previewErr:  errors.New("preview service down"),
		shippingErr: errors.New("also down"),
	}
	svc := NewService(session, catalog, fallbackShipping, nil, metrics.NewCommerceMetrics(reg))

	quote, err := svc.Quote(ctx, QuoteInput{})
	require.NoError(t, err)
	assert.False(t, quote.Pricing.PreviewApplied)
	assert.Equal(t, int64(300000+30000), quote.Pricing.FinalAmount)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var fallbacks float64
	for _, mf := range mfs {
		if mf.GetName() == "commerce_promotion_preview_fallback_total" {
			fallbacks = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), fallbacks)
}

func TestQuoteUsesStoreShippingWhenPreviewHasNone(t *testing.T) {
	ctx := context.Background()
	session := newSession()
	session.AddToCart(ctx, types.CartItem{ProductID: uuid.New(), Price: 200000, Stock: 9}, 1)

	catalog := &fakeCatalog{shipping: types.ShippingConfig{ShippingFee: 15000, FreeShippingThreshold: 150000}}
	svc := NewService(session, catalog, fallbackShipping, nil, nil)

	quote, err := svc.Quote(ctx, QuoteInput{})
	require.NoError(t, err)
	assert.True(t, quote.Pricing.IsFreeShipping)
	assert.Equal(t, int64(200000), quote.Pricing.FinalAmount)
}

func TestPlaceOrderRequiresAuthentication(t *testing.T) {
	svc := NewService(newSession(), &fakeCatalog{}, fallbackShipping, nil, nil)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{ShippingAddress: "x"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestPlaceOrderClearsCartEvenWhenCleanupFails(t *testing.T) {
	ctx := context.Background()
	session := newSession()
	orderID := uuid.New()
	rem := &orderingRemote{
		cart:     types.EmptyCart(),
		order:    types.Order{ID: orderID, FinalAmount: 460000},
		clearErr: errors.New("remote clear failed"),
	}
	_, err := session.Authenticate(ctx, "user-1", rem)
	require.NoError(t, err)
	session.ClearLocalCart(ctx)

	svc := NewService(session, &fakeCatalog{}, fallbackShipping, nil, nil)
	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{ShippingAddress: "1 Main St", IdempotencyKey: "k-1"})

	require.NoError(t, err, "clean-up failures never fail a placed order")
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, []string{"k-1"}, rem.keys)
	assert.Equal(t, 1, rem.cleared)
}

func TestPlaceOrderPropagatesStoreRejection(t *testing.T) {
	ctx := context.Background()
	session := newSession()
	rem := &orderingRemote{
		cart:     types.EmptyCart(),
		orderErr: pkgerrors.StockExceeded(uuid.New(), 3, 1),
	}
	_, _ = session.Authenticate(ctx, "user-2", rem)

	svc := NewService(session, &fakeCatalog{}, fallbackShipping, nil, nil)
	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{ShippingAddress: "1 Main St"})

	assert.Equal(t, pkgerrors.KindStockExceeded, pkgerrors.KindOf(err))
	assert.Equal(t, 0, rem.cleared, "a rejected order must not clear the cart")
}
