package types

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one denormalized cart line. Price is the unit price in the
// currency's smallest unit at the time the line was added.
type CartItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSlug  string    `json:"product_slug"`
	ProductImage string    `json:"product_image,omitempty"`
	Price        int64     `json:"price"`
	Quantity     int       `json:"quantity"`
	Stock        int       `json:"stock"`
}

// LineTotal returns price*quantity.
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Cart is the persisted cart record. Total and TotalItems are always derived
// from Items via Recompute.
type Cart struct {
	Items      []CartItem `json:"items"`
	Total      int64      `json:"total"`
	TotalItems int        `json:"total_items"`
}

// Recompute refreshes the derived aggregates from the items.
func (c *Cart) Recompute() {
	var total int64
	var count int
	for _, item := range c.Items {
		total += item.LineTotal()
		count += item.Quantity
	}
	c.Total = total
	c.TotalItems = count
	if c.Items == nil {
		c.Items = []CartItem{}
	}
}

// Index returns the position of productID within the cart, or -1.
func (c Cart) Index(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, Total: c.Total, TotalItems: c.TotalItems}
}

// EmptyCart returns a cart with a non-nil item slice and zero aggregates.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// WishlistItem is one denormalized wishlist entry. AddedAt is set once.
type WishlistItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSlug  string    `json:"product_slug"`
	ProductImage string    `json:"product_image,omitempty"`
	Price        int64     `json:"price"`
	AddedAt      time.Time `json:"added_at"`
}

// Wishlist is the persisted wishlist record.
type Wishlist struct {
	Items      []WishlistItem `json:"items"`
	TotalItems int            `json:"total_items"`
}

// Recompute refreshes TotalItems from the items.
func (w *Wishlist) Recompute() {
	if w.Items == nil {
		w.Items = []WishlistItem{}
	}
	w.TotalItems = len(w.Items)
}

// Index returns the position of productID within the wishlist, or -1.
func (w Wishlist) Index(productID uuid.UUID) int {
	for i, item := range w.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (w Wishlist) IsEmpty() bool {
	return len(w.Items) == 0
}

// Clone returns a deep copy.
func (w Wishlist) Clone() Wishlist {
	items := make([]WishlistItem, len(w.Items))
	copy(items, w.Items)
	return Wishlist{Items: items, TotalItems: w.TotalItems}
}

// EmptyWishlist returns a wishlist with a non-nil item slice.
func EmptyWishlist() Wishlist {
	return Wishlist{Items: []WishlistItem{}}
}

// MergeCartItem is one entry of a cart merge request.
type MergeCartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
}

// MergeCartRequest carries the local cart into the authoritative store.
type MergeCartRequest struct {
	Items []MergeCartItem `json:"items" validate:"dive"`
}

// MergeWishlistItem is one entry of a wishlist merge request.
type MergeWishlistItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// MergeWishlistRequest carries the local wishlist into the authoritative store.
type MergeWishlistRequest struct {
	ProductIDs []MergeWishlistItem `json:"product_ids" validate:"dive"`
}
