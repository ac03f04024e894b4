package commerce

import (
	"strings"

	"github.com/angelmondragon/storefront-commerce/internal/localstore"
	"github.com/angelmondragon/storefront-commerce/internal/notify"
	"github.com/angelmondragon/storefront-commerce/internal/stock"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
)

// GuestOptions configures a Guests registry. Storage is required.
type GuestOptions struct {
	Storage     localstore.Storage
	Namespace   string
	Bus         notify.Bus
	Logger      *logger.Logger
	Metrics     *metrics.CommerceMetrics
	StockPolicy stock.Policy
}

// Guests builds anonymous Sessions for guest session ids over shared storage
// and a shared bus. Each guest gets its own storage namespace and signal scope.
type Guests struct {
	opts GuestOptions
}

func NewGuests(opts GuestOptions) *Guests {
	if opts.Storage == nil {
		opts.Storage = localstore.NewMemoryStorage()
	}
	if opts.Bus == nil {
		opts.Bus = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Guests{opts: opts}
}

// Bus returns the signal bus scoped to one guest.
func (g *Guests) Bus(guestID string) notify.Bus {
	return notify.Scoped(g.opts.Bus, guestID)
}

func (g *Guests) namespace(guestID string) string {
	base := strings.TrimSpace(g.opts.Namespace)
	if base == "" {
		return guestID
	}
	return base + ":" + guestID
}

// Session returns an anonymous session over the guest's local collections.
func (g *Guests) Session(guestID string) *Session {
	bus := g.Bus(guestID)
	store := localstore.Options{
		Storage:   g.opts.Storage,
		Namespace: g.namespace(guestID),
		Bus:       bus,
		Logger:    g.opts.Logger,
		Metrics:   g.opts.Metrics,
	}
	return NewSession(Options{
		Cart:        localstore.NewCartStore(store),
		Wishlist:    localstore.NewWishlistStore(store),
		Bus:         bus,
		Logger:      g.opts.Logger,
		Metrics:     g.opts.Metrics,
		StockPolicy: g.opts.StockPolicy,
	})
}
