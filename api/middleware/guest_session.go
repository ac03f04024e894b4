package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/api/validators"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
)

// GuestSessionHeader carries the opaque id of an anonymous shopper.
const GuestSessionHeader = "X-Guest-Session"

// GuestSession requires a well-formed guest session id and exposes it on the
// request context. The id namespaces the shopper's local cart and wishlist.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(GuestSessionHeader))
			if id == "" {
				// EventSource cannot send custom headers.
				id = strings.TrimSpace(r.URL.Query().Get("session"))
			}
			if !validators.ValidGuestSession(id) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "valid "+GuestSessionHeader+" header required"))
				return
			}

			ctx := WithGuestSession(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
