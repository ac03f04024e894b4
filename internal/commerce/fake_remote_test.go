package commerce

import (
	"context"

	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

// fakeRemote is an in-memory authoritative store with a fixed catalog.
type fakeRemote struct {
	catalog  map[uuid.UUID]types.CartItem
	cart     types.Cart
	wishlist types.Wishlist
	mergeErr error
	callErr  error
	merges   int
	calls    int
}

func newFakeRemote(products ...types.CartItem) *fakeRemote {
	catalog := make(map[uuid.UUID]types.CartItem, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}
	return &fakeRemote{catalog: catalog, cart: types.EmptyCart(), wishlist: types.EmptyWishlist()}
}

func (f *fakeRemote) GetCart(context.Context) (types.Cart, error) {
	f.calls++
	return f.cart.Clone(), f.callErr
}

func (f *fakeRemote) AddCartItem(_ context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	f.calls++
	if f.callErr != nil {
		return types.Cart{}, f.callErr
	}
	product, ok := f.catalog[productID]
	if !ok {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if idx := f.cart.Index(productID); idx >= 0 {
		f.cart.Items[idx].Quantity = min(f.cart.Items[idx].Quantity+quantity, product.Stock)
	} else {
		product.Quantity = min(quantity, product.Stock)
		f.cart.Items = append(f.cart.Items, product)
	}
	f.cart.Recompute()
	return f.cart.Clone(), nil
}

func (f *fakeRemote) UpdateCartItem(_ context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	f.calls++
	if f.callErr != nil {
		return types.Cart{}, f.callErr
	}
	idx := f.cart.Index(productID)
	if idx < 0 {
		return types.Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	if quantity > f.cart.Items[idx].Stock {
		return types.Cart{}, pkgerrors.StockExceeded(productID, quantity, f.cart.Items[idx].Stock)
	}
	f.cart.Items[idx].Quantity = quantity
	f.cart.Recompute()
	return f.cart.Clone(), nil
}

func (f *fakeRemote) RemoveCartItem(_ context.Context, productID uuid.UUID) (types.Cart, error) {
	f.calls++
	if idx := f.cart.Index(productID); idx >= 0 {
		f.cart.Items = append(f.cart.Items[:idx], f.cart.Items[idx+1:]...)
	}
	f.cart.Recompute()
	return f.cart.Clone(), f.callErr
}

func (f *fakeRemote) ClearCart(context.Context) error {
	f.calls++
	if f.callErr != nil {
		return f.callErr
	}
	f.cart = types.EmptyCart()
	return nil
}

func (f *fakeRemote) MergeCart(ctx context.Context, req types.MergeCartRequest) (types.Cart, error) {
	f.merges++
	if f.mergeErr != nil {
		return types.Cart{}, f.mergeErr
	}
	for _, item := range req.Items {
		if _, err := f.AddCartItem(ctx, item.ProductID, item.Quantity); err != nil {
			continue
		}
	}
	return f.cart.Clone(), nil
}

func (f *fakeRemote) GetWishlist(context.Context) (types.Wishlist, error) {
	f.calls++
	return f.wishlist.Clone(), f.callErr
}

func (f *fakeRemote) AddWishlistItem(_ context.Context, productID uuid.UUID) (types.Wishlist, error) {
	f.calls++
	if f.callErr != nil {
		return types.Wishlist{}, f.callErr
	}
	if f.wishlist.Index(productID) < 0 {
		f.wishlist.Items = append(f.wishlist.Items, types.WishlistItem{ProductID: productID})
	}
	f.wishlist.Recompute()
	return f.wishlist.Clone(), nil
}

func (f *fakeRemote) RemoveWishlistItem(_ context.Context, productID uuid.UUID) (types.Wishlist, error) {
	f.calls++
	if idx := f.wishlist.Index(productID); idx >= 0 {
		f.wishlist.Items = append(f.wishlist.Items[:idx], f.wishlist.Items[idx+1:]...)
	}
	f.wishlist.Recompute()
	return f.wishlist.Clone(), f.callErr
}

func (f *fakeRemote) MergeWishlist(ctx context.Context, req types.MergeWishlistRequest) (types.Wishlist, error) {
	f.merges++
	if f.mergeErr != nil {
		return types.Wishlist{}, f.mergeErr
	}
	for _, item := range req.ProductIDs {
		_, _ = f.AddWishlistItem(ctx, item.ProductID)
	}
	return f.wishlist.Clone(), nil
}

func (f *fakeRemote) ValidateCoupon(context.Context, types.CouponRequest) (types.CouponResult, error) {
	return types.CouponResult{}, nil
}

func (f *fakeRemote) PreviewPromotions(context.Context, types.PreviewRequest) (types.PromotionPreview, error) {
	return types.PromotionPreview{}, nil
}

func (f *fakeRemote) ShippingConfig(context.Context) (types.ShippingConfig, error) {
	return types.ShippingConfig{}, nil
}

func (f *fakeRemote) CreateOrder(context.Context, types.CreateOrderRequest, string) (types.Order, error) {
	return types.Order{}, nil
}
