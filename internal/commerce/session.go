// Package commerce routes cart and wishlist operations to the local store
// while the shopper is anonymous and to the authoritative store once they
// have authenticated, and runs the one-time merge between the two.
package commerce

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront-commerce/internal/localstore"
	"github.com/angelmondragon/storefront-commerce/internal/notify"
	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/internal/stock"
	"github.com/angelmondragon/storefront-commerce/internal/syncer"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

// AuthState is the session's position in the anonymous to authenticated flow.
type AuthState int

const (
	StateAnonymous AuthState = iota
	StateAuthenticated
)

func (s AuthState) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Options configures a Session. Cart and Wishlist are required.
type Options struct {
	Cart     *localstore.CartStore
	Wishlist *localstore.WishlistStore
	Bus      notify.Bus
	Logger   *logger.Logger
	Metrics  *metrics.CommerceMetrics
	// StockPolicy picks clamp (default) or reject for local quantity changes.
	StockPolicy stock.Policy
}

// Session owns one shopper's cart and wishlist.
type Session struct {
	mu       sync.Mutex
	state    AuthState
	userID   string
	client   remote.Client
	cart     *localstore.CartStore
	wishlist *localstore.WishlistStore
	bus      notify.Bus
	logg     *logger.Logger
	metrics  *metrics.CommerceMetrics
	policy   stock.Policy
}

func NewSession(opts Options) *Session {
	if opts.Bus == nil {
		opts.Bus = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Session{
		state:    StateAnonymous,
		cart:     opts.Cart,
		wishlist: opts.Wishlist,
		bus:      opts.Bus,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		policy:   opts.StockPolicy,
	}
}

func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Remote returns the authoritative client, or nil while anonymous.
func (s *Session) Remote() remote.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Authenticate moves the session to authenticated and merges the local
// collections into client exactly once. A merge failure never fails the
// transition; it only shows up as false in the report.
func (s *Session) Authenticate(ctx context.Context, userID string, client remote.Client) (syncer.Report, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || client == nil {
		return syncer.Report{}, pkgerrors.New(pkgerrors.CodeValidation, "user id and remote client are required")
	}

	s.mu.Lock()
	if s.state == StateAuthenticated {
		s.mu.Unlock()
		return syncer.Report{}, pkgerrors.New(pkgerrors.CodeStateConflict, "session is already authenticated")
	}
	s.state = StateAuthenticated
	s.userID = userID
	s.client = client
	s.mu.Unlock()

	ctx = s.logg.WithUserID(ctx, userID)
	report := syncer.NewCoordinator(s.cart, s.wishlist, client, s.logg, s.metrics).SyncAll(ctx)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"cart_synced": report.Cart, "wishlist_synced": report.Wishlist}), "session authenticated")

	s.signal(ctx, notify.SignalCartChanged)
	s.signal(ctx, notify.SignalWishlistChanged)
	return report, nil
}

// SignOut returns the session to anonymous. Anything that failed to merge is
// still in the local store and is merged again at the next Authenticate.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.state = StateAnonymous
	s.userID = ""
	s.client = nil
	s.mu.Unlock()

	if wasAuthenticated {
		s.signal(ctx, notify.SignalCartChanged)
		s.signal(ctx, notify.SignalWishlistChanged)
	}
}

func (s *Session) route() (remote.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client, s.state == StateAuthenticated
}

func (s *Session) signal(ctx context.Context, signal notify.Signal) {
	if err := s.bus.Publish(ctx, signal); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "signal", string(signal)), "change signal not delivered")
	}
}

// Cart reads the cart from whichever store the session is routed to.
func (s *Session) Cart(ctx context.Context) (types.Cart, error) {
	if client, ok := s.route(); ok {
		return client.GetCart(ctx)
	}
	return s.cart.Get(ctx), nil
}

// Wishlist reads the wishlist from whichever store the session is routed to.
func (s *Session) Wishlist(ctx context.Context) (types.Wishlist, error) {
	if client, ok := s.route(); ok {
		return client.GetWishlist(ctx)
	}
	return s.wishlist.Get(ctx), nil
}

// AddToCart adds quantity units of item.
func (s *Session) AddToCart(ctx context.Context, item types.CartItem, quantity int) Mutation[types.Cart] {
	m := pending[types.Cart]()
	if client, ok := s.route(); ok {
		return s.confirmCart(ctx, m, func() (types.Cart, error) {
			return client.AddCartItem(ctx, item.ProductID, max(quantity, 1))
		})
	}
	if s.policy == stock.PolicyReject {
		cart, err := s.cart.AddItemStrict(ctx, item, quantity)
		if err != nil {
			return m.rejected(cart, err)
		}
		return m.optimistic(cart)
	}
	return m.optimistic(s.cart.AddItem(ctx, item, quantity))
}

// UpdateCartItem sets a line's quantity; quantity <= 0 removes the line.
func (s *Session) UpdateCartItem(ctx context.Context, productID uuid.UUID, quantity int) Mutation[types.Cart] {
	m := pending[types.Cart]()
	if client, ok := s.route(); ok {
		return s.confirmCart(ctx, m, func() (types.Cart, error) {
			if quantity <= 0 {
				return client.RemoveCartItem(ctx, productID)
			}
			return client.UpdateCartItem(ctx, productID, quantity)
		})
	}
	if s.policy == stock.PolicyReject {
		cart, err := s.cart.UpdateItemQuantityStrict(ctx, productID, quantity)
		if err != nil {
			return m.rejected(cart, err)
		}
		return m.optimistic(cart)
	}
	return m.optimistic(s.cart.UpdateItemQuantity(ctx, productID, quantity))
}

func (s *Session) RemoveFromCart(ctx context.Context, productID uuid.UUID) Mutation[types.Cart] {
	m := pending[types.Cart]()
	if client, ok := s.route(); ok {
		return s.confirmCart(ctx, m, func() (types.Cart, error) {
			return client.RemoveCartItem(ctx, productID)
		})
	}
	return m.optimistic(s.cart.RemoveItem(ctx, productID))
}

func (s *Session) ClearCart(ctx context.Context) Mutation[types.Cart] {
	m := pending[types.Cart]()
	if client, ok := s.route(); ok {
		return s.confirmCart(ctx, m, func() (types.Cart, error) {
			if err := client.ClearCart(ctx); err != nil {
				return types.Cart{}, err
			}
			return types.EmptyCart(), nil
		})
	}
	_ = s.cart.Clear(ctx)
	return m.optimistic(types.EmptyCart())
}

func (s *Session) confirmCart(ctx context.Context, m *Mutation[types.Cart], call func() (types.Cart, error)) Mutation[types.Cart] {
	cart, err := call()
	if err != nil {
		s.logRejected(ctx, "cart", err)
		return m.rejected(types.Cart{}, err)
	}
	s.signal(ctx, notify.SignalCartChanged)
	return m.confirmed(cart)
}

func (s *Session) AddToWishlist(ctx context.Context, item types.WishlistItem) Mutation[types.Wishlist] {
	m := pending[types.Wishlist]()
	if client, ok := s.route(); ok {
		return s.confirmWishlist(ctx, m, func() (types.Wishlist, error) {
			return client.AddWishlistItem(ctx, item.ProductID)
		})
	}
	return m.optimistic(s.wishlist.AddItem(ctx, item))
}

func (s *Session) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) Mutation[types.Wishlist] {
	m := pending[types.Wishlist]()
	if client, ok := s.route(); ok {
		return s.confirmWishlist(ctx, m, func() (types.Wishlist, error) {
			return client.RemoveWishlistItem(ctx, productID)
		})
	}
	return m.optimistic(s.wishlist.RemoveItem(ctx, productID))
}

// ToggleWishlist adds item when absent and removes it when present.
func (s *Session) ToggleWishlist(ctx context.Context, item types.WishlistItem) Mutation[types.Wishlist] {
	m := pending[types.Wishlist]()
	if client, ok := s.route(); ok {
		return s.confirmWishlist(ctx, m, func() (types.Wishlist, error) {
			current, err := client.GetWishlist(ctx)
			if err != nil {
				return types.Wishlist{}, err
			}
			if current.Index(item.ProductID) >= 0 {
				return client.RemoveWishlistItem(ctx, item.ProductID)
			}
			return client.AddWishlistItem(ctx, item.ProductID)
		})
	}
	return m.optimistic(s.wishlist.ToggleItem(ctx, item))
}

func (s *Session) confirmWishlist(ctx context.Context, m *Mutation[types.Wishlist], call func() (types.Wishlist, error)) Mutation[types.Wishlist] {
	wishlist, err := call()
	if err != nil {
		s.logRejected(ctx, "wishlist", err)
		return m.rejected(types.Wishlist{}, err)
	}
	s.signal(ctx, notify.SignalWishlistChanged)
	return m.confirmed(wishlist)
}

func (s *Session) logRejected(ctx context.Context, collection string, err error) {
	ctx = s.logg.WithCollection(ctx, collection)
	if pkgerrors.KindOf(err).UserFacing() {
		s.logg.Info(s.logg.WithField(ctx, "error_code", string(pkgerrors.CodeOf(err))), "remote mutation rejected")
		return
	}
	s.logg.Error(ctx, "remote mutation failed", err)
}

// ClearLocalCart empties the local cart regardless of auth state.
func (s *Session) ClearLocalCart(ctx context.Context) {
	_ = s.cart.Clear(ctx)
}
