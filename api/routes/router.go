package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hellofresh/health-go/v5"

	"github.com/angelmondragon/storefront-commerce/api/controllers"
	"github.com/angelmondragon/storefront-commerce/api/middleware"
	"github.com/angelmondragon/storefront-commerce/internal/commerce"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/pkg/config"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/redis"
)

// Dependencies are the collaborators the HTTP surface is built from. Redis is
// optional; without it idempotency replay and rate limiting are disabled.
type Dependencies struct {
	Config    *config.Config
	Logger    *logger.Logger
	Readiness *health.Health
	Metrics   http.Handler
	Redis     *redis.Client
	Services  remote.Services
	Catalog   controllers.Catalog
	Guests    *commerce.Guests
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg, svc := deps.Config, deps.Logger, deps.Services

	var idempotencyStore redis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		if deps.Readiness != nil {
			r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness))
		}
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/promotions/preview", controllers.PromotionsPreview(svc.Promotions, logg))
		r.Post("/coupons/validate", controllers.CouponsValidate(svc.Coupons, logg))
		r.Get("/shipping-config", controllers.ShippingConfig(svc.Promotions, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svc.Cart, logg))
				r.Delete("/", controllers.CartClear(svc.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svc.Cart, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(svc.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(svc.Cart, logg))
				r.Post("/merge", controllers.CartMerge(svc.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(svc.Wishlist, logg))
				r.Post("/items", controllers.WishlistAddItem(svc.Wishlist, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemoveItem(svc.Wishlist, logg))
				r.Post("/merge", controllers.WishlistMerge(svc.Wishlist, logg))
			})

			r.Post("/orders", controllers.OrdersCreate(svc.Orders, logg))
			r.Get("/orders/{orderId}", controllers.OrdersGet(svc.Orders, logg))

			r.With(middleware.GuestSession(logg)).Post("/session/claim", controllers.SessionClaim(deps.Guests, svc, logg))
		})
	})

	r.Route("/api/guest", func(r chi.Router) {
		r.Use(middleware.GuestSession(logg))

		r.Get("/events", controllers.GuestEvents(deps.Guests, 0, logg))

		r.Group(func(r chi.Router) {
			if deps.Redis != nil {
				policy := middleware.NewRateLimitPolicy("guest", cfg.App.GuestRateWindow, cfg.App.GuestRateLimitIP, cfg.App.GuestRateLimitSession)
				r.Use(middleware.RateLimit(policy, deps.Redis, logg))
			}

			r.Get("/cart", controllers.GuestCartFetch(deps.Guests, logg))
			r.Delete("/cart", controllers.GuestCartClear(deps.Guests, logg))
			r.Post("/cart/items", controllers.GuestCartAddItem(deps.Guests, deps.Catalog, logg))
			r.Patch("/cart/items/{productId}", controllers.GuestCartUpdateItem(deps.Guests, logg))
			r.Delete("/cart/items/{productId}", controllers.GuestCartRemoveItem(deps.Guests, logg))

			r.Get("/wishlist", controllers.GuestWishlistFetch(deps.Guests, logg))
			r.Post("/wishlist/toggle", controllers.GuestWishlistToggle(deps.Guests, deps.Catalog, nil, logg))
			r.Delete("/wishlist/items/{productId}", controllers.GuestWishlistRemoveItem(deps.Guests, logg))
		})
	})

	return r
}
