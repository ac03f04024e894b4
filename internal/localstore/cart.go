package localstore

import (
	"context"

	"github.com/angelmondragon/storefront-commerce/internal/stock"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

// CartStore is the local cart. Every mutation recomputes the aggregates,
// persists, and publishes cart-changed.
type CartStore struct {
	c *collection[types.Cart]
}

func NewCartStore(opts Options) *CartStore {
	opts = opts.withDefaults()
	return &CartStore{c: newCollection(enums.CollectionCart, opts, types.EmptyCart)}
}

// Get returns the current cart, or an empty one.
func (s *CartStore) Get(ctx context.Context) types.Cart {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.get(ctx)
}

func (s *CartStore) get(ctx context.Context) types.Cart {
	cart := s.c.read(ctx)
	cart.Recompute()
	return cart
}

// Save persists cart with freshly derived aggregates and returns it.
func (s *CartStore) Save(ctx context.Context, cart types.Cart) types.Cart {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.save(ctx, cart.Clone())
}

func (s *CartStore) save(ctx context.Context, cart types.Cart) types.Cart {
	cart.Items = normalize(cart.Items)
	cart.Recompute()
	s.c.write(ctx, cart)
	return cart
}

// AddItem adds quantity units of item, clamping the line to item.Stock.
// A quantity below one adds a single unit.
func (s *CartStore) AddItem(ctx context.Context, item types.CartItem, quantity int) types.Cart {
	cart, _ := s.addItem(ctx, item, quantity, stock.PolicyClamp)
	return cart
}

// AddItemStrict is AddItem with the reject policy: a request beyond stock
// returns STOCK_EXCEEDED and leaves the cart untouched.
func (s *CartStore) AddItemStrict(ctx context.Context, item types.CartItem, quantity int) (types.Cart, error) {
	return s.addItem(ctx, item, quantity, stock.PolicyReject)
}

func (s *CartStore) addItem(ctx context.Context, item types.CartItem, quantity int, policy stock.Policy) (types.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	cart := s.get(ctx)
	idx := cart.Index(item.ProductID)
	requested := quantity
	if idx >= 0 {
		requested += cart.Items[idx].Quantity
	}
	decision, err := stock.Resolve(item.ProductID, requested, item.Stock, policy)
	if err != nil {
		return cart, err
	}

	switch {
	case decision.Remove && idx < 0:
		return cart, nil
	case decision.Remove:
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	case idx >= 0:
		cart.Items[idx].Quantity = decision.Quantity
		cart.Items[idx].Stock = item.Stock
	default:
		item.Quantity = decision.Quantity
		cart.Items = append(cart.Items, item)
	}
	return s.save(ctx, cart), nil
}

// UpdateItemQuantity sets the quantity of an existing line, clamped to its
// stock. quantity <= 0 removes the line. Unknown products are ignored.
func (s *CartStore) UpdateItemQuantity(ctx context.Context, productID uuid.UUID, quantity int) types.Cart {
	cart, _ := s.updateItemQuantity(ctx, productID, quantity, stock.PolicyClamp)
	return cart
}

// UpdateItemQuantityStrict rejects quantities beyond stock with STOCK_EXCEEDED.
func (s *CartStore) UpdateItemQuantityStrict(ctx context.Context, productID uuid.UUID, quantity int) (types.Cart, error) {
	return s.updateItemQuantity(ctx, productID, quantity, stock.PolicyReject)
}

func (s *CartStore) updateItemQuantity(ctx context.Context, productID uuid.UUID, quantity int, policy stock.Policy) (types.Cart, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	cart := s.get(ctx)
	idx := cart.Index(productID)
	if idx < 0 {
		return cart, nil
	}
	decision, err := stock.Resolve(productID, quantity, cart.Items[idx].Stock, policy)
	if err != nil {
		return cart, err
	}
	if decision.Remove {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = decision.Quantity
	}
	return s.save(ctx, cart), nil
}

// RemoveItem drops the line for productID.
func (s *CartStore) RemoveItem(ctx context.Context, productID uuid.UUID) types.Cart {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	cart := s.get(ctx)
	filtered := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	cart.Items = filtered
	return s.save(ctx, cart)
}

// Clear deletes the persisted record. It is idempotent. The returned error is
// a STORAGE_UNAVAILABLE error meaning the old record may still be readable.
func (s *CartStore) Clear(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.clear(ctx)
}

func (s *CartStore) IsEmpty(ctx context.Context) bool {
	return s.Get(ctx).IsEmpty()
}

// ItemCount returns the total number of units in the cart.
func (s *CartStore) ItemCount(ctx context.Context) int {
	return s.Get(ctx).TotalItems
}

func (s *CartStore) HasItem(ctx context.Context, productID uuid.UUID) bool {
	return s.Get(ctx).Index(productID) >= 0
}

// Snapshot returns the persisted record bytes, or nil when there is none.
func (s *CartStore) Snapshot(ctx context.Context) []byte {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.snapshot(ctx)
}

// normalize drops lines the guard would never allow to persist.
func normalize(items []types.CartItem) []types.CartItem {
	kept := items[:0]
	for _, item := range items {
		if item.Quantity = stock.Clamp(item.Quantity, item.Stock); item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	return kept
}
