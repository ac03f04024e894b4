package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/api/validators"
	orderssvc "github.com/angelmondragon/storefront-commerce/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// OrdersCreate places an order from the user's cart. The Idempotency-Key
// header is forwarded so a retried placement returns the first order.
func OrdersCreate(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID, err := userFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload types.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.ShippingAddress = validators.SanitizeString(payload.ShippingAddress, 500)
		payload.Note = validators.SanitizeString(payload.Note, 1000)

		key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		order, err := svc.Create(r.Context(), userID, payload, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrdersGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		userID, err := userFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
