package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/api/validators"
	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/products"
	"github.com/angelmondragon/storefront-commerce/pkg/db/models"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// Catalog resolves the products a guest puts in a cart or wishlist.
type Catalog interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type guestAddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type guestCartResponse struct {
	Phase string     `json:"phase"`
	Cart  types.Cart `json:"cart"`
}

type guestWishlistResponse struct {
	Phase      string         `json:"phase"`
	Wishlist   types.Wishlist `json:"wishlist"`
	InWishlist *bool          `json:"in_wishlist,omitempty"`
}

func writeCartMutation(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, m commerce.Mutation[types.Cart]) {
	if m.Err != nil {
		responses.WriteError(ctx, logg, w, m.Err)
		return
	}
	responses.WriteSuccess(w, guestCartResponse{Phase: m.Phase.String(), Cart: m.Result})
}

func GuestCartFetch(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := guests.Session(guestID).Cart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// GuestCartAddItem adds to the guest's local cart, clamped to current stock.
// A missing or non-positive quantity adds one unit.
func GuestCartAddItem(guests *commerce.Guests, catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestAddCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.FindActive(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := products.CartItem(*product, product.Price, 0)
		writeCartMutation(r.Context(), logg, w, guests.Session(guestID).AddToCart(r.Context(), item, payload.Quantity))
	}
}

func GuestCartUpdateItem(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartMutation(r.Context(), logg, w, guests.Session(guestID).UpdateCartItem(r.Context(), productID, payload.Quantity))
	}
}

func GuestCartRemoveItem(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeCartMutation(r.Context(), logg, w, guests.Session(guestID).RemoveFromCart(r.Context(), productID))
	}
}

func GuestCartClear(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartMutation(r.Context(), logg, w, guests.Session(guestID).ClearCart(r.Context()))
	}
}

func GuestWishlistFetch(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wishlist, err := guests.Session(guestID).Wishlist(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wishlist)
	}
}

// GuestWishlistToggle adds the product when absent and removes it when present.
func GuestWishlistToggle(guests *commerce.Guests, catalog Catalog, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload wishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalog.FindActive(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m := guests.Session(guestID).ToggleWishlist(r.Context(), products.WishlistItem(*product, now()))
		if m.Err != nil {
			responses.WriteError(r.Context(), logg, w, m.Err)
			return
		}
		present := m.Result.Index(product.ID) >= 0
		responses.WriteSuccess(w, guestWishlistResponse{Phase: m.Phase.String(), Wishlist: m.Result, InWishlist: &present})
	}
}

func GuestWishlistRemoveItem(guests *commerce.Guests, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m := guests.Session(guestID).RemoveFromWishlist(r.Context(), productID)
		if m.Err != nil {
			responses.WriteError(r.Context(), logg, w, m.Err)
			return
		}
		responses.WriteSuccess(w, guestWishlistResponse{Phase: m.Phase.String(), Wishlist: m.Result})
	}
}
