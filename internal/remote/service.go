package remote

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-commerce/internal/cart"
	"github.com/angelmondragon/storefront-commerce/internal/coupons"
	"github.com/angelmondragon/storefront-commerce/internal/orders"
	"github.com/angelmondragon/storefront-commerce/internal/promotions"
	"github.com/angelmondragon/storefront-commerce/internal/wishlist"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// Services are the server-side collaborators a ServiceClient delegates to.
type Services struct {
	Cart       cart.Service
	Wishlist   wishlist.Service
	Coupons    coupons.Service
	Promotions promotions.Service
	Orders     orders.Service
}

func (s Services) validate() error {
	switch {
	case s.Cart == nil:
		return fmt.Errorf("cart service required")
	case s.Wishlist == nil:
		return fmt.Errorf("wishlist service required")
	case s.Coupons == nil:
		return fmt.Errorf("coupon service required")
	case s.Promotions == nil:
		return fmt.Errorf("promotion service required")
	case s.Orders == nil:
		return fmt.Errorf("order service required")
	}
	return nil
}

// ServiceClient is the in-process Client for one user.
type ServiceClient struct {
	userID uuid.UUID
	svc    Services
}

var _ Client = (*ServiceClient)(nil)

// NewServiceClient binds services to userID.
func NewServiceClient(userID uuid.UUID, svc Services) (*ServiceClient, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := svc.validate(); err != nil {
		return nil, err
	}
	return &ServiceClient{userID: userID, svc: svc}, nil
}

func (c *ServiceClient) UserID() uuid.UUID { return c.userID }

func (c *ServiceClient) GetCart(ctx context.Context) (types.Cart, error) {
	return c.svc.Cart.Get(ctx, c.userID)
}

func (c *ServiceClient) AddCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	return c.svc.Cart.AddItem(ctx, c.userID, productID, quantity)
}

func (c *ServiceClient) UpdateCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	return c.svc.Cart.UpdateItem(ctx, c.userID, productID, quantity)
}

func (c *ServiceClient) RemoveCartItem(ctx context.Context, productID uuid.UUID) (types.Cart, error) {
	return c.svc.Cart.RemoveItem(ctx, c.userID, productID)
}

func (c *ServiceClient) ClearCart(ctx context.Context) error {
	return c.svc.Cart.Clear(ctx, c.userID)
}

func (c *ServiceClient) MergeCart(ctx context.Context, req types.MergeCartRequest) (types.Cart, error) {
	return c.svc.Cart.Merge(ctx, c.userID, req)
}

func (c *ServiceClient) GetWishlist(ctx context.Context) (types.Wishlist, error) {
	return c.svc.Wishlist.Get(ctx, c.userID)
}

func (c *ServiceClient) AddWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error) {
	return c.svc.Wishlist.AddItem(ctx, c.userID, productID)
}

func (c *ServiceClient) RemoveWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error) {
	return c.svc.Wishlist.RemoveItem(ctx, c.userID, productID)
}

func (c *ServiceClient) MergeWishlist(ctx context.Context, req types.MergeWishlistRequest) (types.Wishlist, error) {
	return c.svc.Wishlist.Merge(ctx, c.userID, req)
}

func (c *ServiceClient) ValidateCoupon(ctx context.Context, req types.CouponRequest) (types.CouponResult, error) {
	return c.svc.Coupons.Validate(ctx, req)
}

func (c *ServiceClient) PreviewPromotions(ctx context.Context, req types.PreviewRequest) (types.PromotionPreview, error) {
	return c.svc.Promotions.Preview(ctx, req)
}

func (c *ServiceClient) ShippingConfig(context.Context) (types.ShippingConfig, error) {
	return c.svc.Promotions.ShippingConfig(), nil
}

func (c *ServiceClient) CreateOrder(ctx context.Context, req types.CreateOrderRequest, idempotencyKey string) (types.Order, error) {
	return c.svc.Orders.Create(ctx, c.userID, req, idempotencyKey)
}
