package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-commerce/api/middleware"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
)

func userFromRequest(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}

func guestFromRequest(r *http.Request) (string, error) {
	id := middleware.GuestSessionFromContext(r.Context())
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "guest session missing")
	}
	return id, nil
}
