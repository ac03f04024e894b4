package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-commerce/api/responses"
	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/notify"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
)

const defaultEventsHeartbeat = 25 * time.Second

// GuestEvents streams change signals for the guest's cart and wishlist as
// server-sent events. Events carry no state; clients re-read the collection.
func GuestEvents(guests *commerce.Guests, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = defaultEventsHeartbeat
	}
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		bus := guests.Bus(guestID)
		cartSub := bus.Subscribe(notify.SignalCartChanged)
		defer cartSub.Close()
		wishlistSub := bus.Subscribe(notify.SignalWishlistChanged)
		defer wishlistSub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			var signal notify.Signal
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
				continue
			case <-cartSub.C():
				signal = notify.SignalCartChanged
			case <-wishlistSub.C():
				signal = notify.SignalWishlistChanged
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", signal); err != nil {
				if logg != nil {
					logg.WarnErr(ctx, "guest event stream closed", err)
				}
				return
			}
			flusher.Flush()
		}
	}
}
