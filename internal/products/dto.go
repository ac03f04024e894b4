package products

import (
	"time"

	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

func imageOf(product models.Product) string {
	if product.ImageURL == nil {
		return ""
	}
	return *product.ImageURL
}

// CartItem denormalizes a product into a cart line.
func CartItem(product models.Product, unitPrice int64, quantity int) types.CartItem {
	return types.CartItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductSlug:  product.Slug,
		ProductImage: imageOf(product),
		Price:        unitPrice,
		Quantity:     quantity,
		Stock:        product.Stock,
	}
}

// WishlistItem denormalizes a product into a wishlist entry.
func WishlistItem(product models.Product, addedAt time.Time) types.WishlistItem {
	return types.WishlistItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductSlug:  product.Slug,
		ProductImage: imageOf(product),
		Price:        product.Price,
		AddedAt:      addedAt.UTC(),
	}
}
