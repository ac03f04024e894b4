// Package remote holds the contracts of the authoritative store and two
// implementations of them: an HTTP client for out-of-process callers and an
// in-process adapter over the server services.
package remote

import (
	"context"

	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

type CartClient interface {
	GetCart(ctx context.Context) (types.Cart, error)
	AddCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error)
	UpdateCartItem(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error)
	RemoveCartItem(ctx context.Context, productID uuid.UUID) (types.Cart, error)
	ClearCart(ctx context.Context) error
	MergeCart(ctx context.Context, req types.MergeCartRequest) (types.Cart, error)
}

type WishlistClient interface {
	GetWishlist(ctx context.Context) (types.Wishlist, error)
	AddWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error)
	RemoveWishlistItem(ctx context.Context, productID uuid.UUID) (types.Wishlist, error)
	MergeWishlist(ctx context.Context, req types.MergeWishlistRequest) (types.Wishlist, error)
}

// CouponClient validates a code against an order total. An invalid code is
// a successful call with Valid=false and the store's message.
type CouponClient interface {
	ValidateCoupon(ctx context.Context, req types.CouponRequest) (types.CouponResult, error)
}

type PromotionClient interface {
	PreviewPromotions(ctx context.Context, req types.PreviewRequest) (types.PromotionPreview, error)
}

type ShippingClient interface {
	ShippingConfig(ctx context.Context) (types.ShippingConfig, error)
}

// OrderClient places an order. The store clears its copy of the cart as part
// of placement.
type OrderClient interface {
	CreateOrder(ctx context.Context, req types.CreateOrderRequest, idempotencyKey string) (types.Order, error)
}

// Client is the full authoritative store surface for one user.
type Client interface {
	CartClient
	WishlistClient
	CouponClient
	PromotionClient
	ShippingClient
	OrderClient
}

// MergeStore is what the sync coordinator needs from the remote side.
type MergeStore interface {
	MergeCart(ctx context.Context, req types.MergeCartRequest) (types.Cart, error)
	MergeWishlist(ctx context.Context, req types.MergeWishlistRequest) (types.Wishlist, error)
}
