package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
)

type sessionClaimResponse struct {
	UserID         string `json:"user_id"`
	CartSynced     bool   `json:"cart_synced"`
	WishlistSynced bool   `json:"wishlist_synced"`
}

// SessionClaim runs the sign-in transition for a guest session: whatever the
// guest collected is merged into the user's stored cart and wishlist. Merge
// failures are reported, not returned as errors; unmerged guest data stays
// in place for the next claim.
func SessionClaim(guests *commerce.Guests, services remote.Services, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := remote.NewServiceClient(userID, services)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := guests.Session(guestID).Authenticate(r.Context(), userID.String(), client)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionClaimResponse{
			UserID:         userID.String(),
			CartSynced:     report.Cart,
			WishlistSynced: report.Wishlist,
		})
	}
}
