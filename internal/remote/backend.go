package remote

import (
	"time"

	"github.com/angelmondragon/storefront-commerce/internal/cart"
	"github.com/angelmondragon/storefront-commerce/internal/coupons"
	"github.com/angelmondragon/storefront-commerce/internal/orders"
	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/internal/promotions"
	"github.com/angelmondragon/storefront-commerce/internal/wishlist"
	"github.com/angelmondragon/storefront-commerce/pkg/db"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// Backend is the authoritative store: every server-side service over one
// database, plus the product catalog they share.
type Backend struct {
	Services Services
	Products *products.Repository
}

// NewBackend wires the server services. now may be nil.
func NewBackend(client *db.Client, shipping types.ShippingConfig, logg *logger.Logger, now func() time.Time) (*Backend, error) {
	conn := client.DB()
	productRepo := products.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)

	cartSvc, err := cart.NewService(cartRepo, productRepo, client, logg)
	if err != nil {
		return nil, err
	}
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(conn),
		ProductRepo:  productRepo,
		Tx:           client,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	couponSvc, err := coupons.NewService(coupons.NewRepository(conn), now)
	if err != nil {
		return nil, err
	}
	promoSvc, err := promotions.NewService(promotions.NewRepository(conn), productRepo, shipping, now)
	if err != nil {
		return nil, err
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:       orders.NewRepository(conn),
		CartRepo:   cartRepo,
		Products:   productRepo,
		Promotions: promoSvc,
		Coupons:    couponSvc,
		Tx:         client,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}

	return &Backend{
		Services: Services{
			Cart:       cartSvc,
			Wishlist:   wishlistSvc,
			Coupons:    couponSvc,
			Promotions: promoSvc,
			Orders:     orderSvc,
		},
		Products: productRepo,
	}, nil
}
