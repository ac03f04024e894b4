package localstore

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
	"github.com/google/uuid"
)

// WishlistStore is the local wishlist. Every mutation persists and publishes
// wishlist-changed.
type WishlistStore struct {
	c   *collection[types.Wishlist]
	now func() time.Time
}

func NewWishlistStore(opts Options) *WishlistStore {
	opts = opts.withDefaults()
	return &WishlistStore{
		c:   newCollection(enums.CollectionWishlist, opts, types.EmptyWishlist),
		now: opts.Now,
	}
}

func (s *WishlistStore) Get(ctx context.Context) types.Wishlist {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.get(ctx)
}

func (s *WishlistStore) get(ctx context.Context) types.Wishlist {
	wishlist := s.c.read(ctx)
	wishlist.Recompute()
	return wishlist
}

func (s *WishlistStore) Save(ctx context.Context, wishlist types.Wishlist) types.Wishlist {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.save(ctx, wishlist.Clone())
}

func (s *WishlistStore) save(ctx context.Context, wishlist types.Wishlist) types.Wishlist {
	wishlist.Recompute()
	s.c.write(ctx, wishlist)
	return wishlist
}

// AddItem inserts item if absent. AddedAt is stamped on insertion and never
// changed afterwards.
func (s *WishlistStore) AddItem(ctx context.Context, item types.WishlistItem) types.Wishlist {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	wishlist := s.get(ctx)
	if wishlist.Index(item.ProductID) >= 0 {
		return wishlist
	}
	return s.save(ctx, s.insert(wishlist, item))
}

func (s *WishlistStore) insert(wishlist types.Wishlist, item types.WishlistItem) types.Wishlist {
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	wishlist.Items = append(wishlist.Items, item)
	return wishlist
}

func (s *WishlistStore) RemoveItem(ctx context.Context, productID uuid.UUID) types.Wishlist {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.save(ctx, without(s.get(ctx), productID))
}

// ToggleItem adds item when absent and removes it when present.
func (s *WishlistStore) ToggleItem(ctx context.Context, item types.WishlistItem) types.Wishlist {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	wishlist := s.get(ctx)
	if wishlist.Index(item.ProductID) >= 0 {
		return s.save(ctx, without(wishlist, item.ProductID))
	}
	return s.save(ctx, s.insert(wishlist, item))
}

func without(wishlist types.Wishlist, productID uuid.UUID) types.Wishlist {
	filtered := wishlist.Items[:0]
	for _, item := range wishlist.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	wishlist.Items = filtered
	return wishlist
}

func (s *WishlistStore) Clear(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.clear(ctx)
}

func (s *WishlistStore) IsEmpty(ctx context.Context) bool {
	return s.Get(ctx).IsEmpty()
}

func (s *WishlistStore) ItemCount(ctx context.Context) int {
	return s.Get(ctx).TotalItems
}

func (s *WishlistStore) HasItem(ctx context.Context, productID uuid.UUID) bool {
	return s.Get(ctx).Index(productID) >= 0
}

// Snapshot returns the persisted record bytes, or nil when there is none.
func (s *WishlistStore) Snapshot(ctx context.Context) []byte {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.snapshot(ctx)
}
