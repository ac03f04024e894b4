// Package syncer merges the anonymous local collections into the
// authoritative store at the moment a shopper authenticates.
package syncer

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-commerce/internal/remote"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-commerce/pkg/errors"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
	"github.com/angelmondragon/storefront-commerce/pkg/types"
)

// LocalCart is the local cart surface the coordinator reads and clears.
type LocalCart interface {
	Get(ctx context.Context) types.Cart
	Clear(ctx context.Context) error
}

// LocalWishlist is the local wishlist surface the coordinator reads and clears.
type LocalWishlist interface {
	Get(ctx context.Context) types.Wishlist
	Clear(ctx context.Context) error
}

// Report says which collections were merged. A false entry means the
// collection was empty or the merge failed; local data is kept in the latter.
type Report struct {
	Cart     bool `json:"cart"`
	Wishlist bool `json:"wishlist"`
}

type Coordinator struct {
	cart     LocalCart
	wishlist LocalWishlist
	remote   remote.MergeStore
	logg     *logger.Logger
	metrics  *metrics.CommerceMetrics
	now      func() time.Time
}

func NewCoordinator(cart LocalCart, wishlist LocalWishlist, store remote.MergeStore, logg *logger.Logger, m *metrics.CommerceMetrics) *Coordinator {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Coordinator{
		cart:     cart,
		wishlist: wishlist,
		remote:   store,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}
}

// SyncAll merges both collections. One collection failing does not stop the
// other.
func (c *Coordinator) SyncAll(ctx context.Context) Report {
	return Report{
		Cart:     c.SyncCart(ctx),
		Wishlist: c.SyncWishlist(ctx),
	}
}

// SyncCart merges the local cart and clears it on success. It never returns
// an error: failures are logged and reported as false.
func (c *Coordinator) SyncCart(ctx context.Context) bool {
	if c.cart == nil {
		return false
	}
	cart := c.cart.Get(ctx)
	if cart.IsEmpty() {
		c.metrics.IncSync(enums.CollectionCart.String(), metrics.OutcomeSkipped)
		return false
	}

	req := types.MergeCartRequest{Items: make([]types.MergeCartItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		req.Items = append(req.Items, types.MergeCartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	started := c.now()
	_, err := c.remote.MergeCart(ctx, req)
	c.metrics.ObserveSyncDuration(enums.CollectionCart.String(), c.now().Sub(started))
	if err != nil {
		c.fail(ctx, enums.CollectionCart, len(req.Items), err)
		return false
	}

	if err := c.cart.Clear(ctx); err != nil {
		c.clearFailed(ctx, enums.CollectionCart, err)
	}
	c.metrics.IncSync(enums.CollectionCart.String(), metrics.OutcomeSynced)
	return true
}

// SyncWishlist merges the local wishlist and clears it on success.
func (c *Coordinator) SyncWishlist(ctx context.Context) bool {
	if c.wishlist == nil {
		return false
	}
	wishlist := c.wishlist.Get(ctx)
	if wishlist.IsEmpty() {
		c.metrics.IncSync(enums.CollectionWishlist.String(), metrics.OutcomeSkipped)
		return false
	}

	req := types.MergeWishlistRequest{ProductIDs: make([]types.MergeWishlistItem, 0, len(wishlist.Items))}
	for _, item := range wishlist.Items {
		req.ProductIDs = append(req.ProductIDs, types.MergeWishlistItem{ProductID: item.ProductID})
	}

	started := c.now()
	_, err := c.remote.MergeWishlist(ctx, req)
	c.metrics.ObserveSyncDuration(enums.CollectionWishlist.String(), c.now().Sub(started))
	if err != nil {
		c.fail(ctx, enums.CollectionWishlist, len(req.ProductIDs), err)
		return false
	}

	if err := c.wishlist.Clear(ctx); err != nil {
		c.clearFailed(ctx, enums.CollectionWishlist, err)
	}
	c.metrics.IncSync(enums.CollectionWishlist.String(), metrics.OutcomeSynced)
	return true
}

func (c *Coordinator) fail(ctx context.Context, collection enums.Collection, items int, err error) {
	ctx = c.logg.WithCollection(ctx, collection.String())
	ctx = c.logg.WithField(ctx, "items", items)
	c.logg.Error(ctx, "remote merge failed, keeping local copy", pkgerrors.Wrap(pkgerrors.CodeRemoteSync, err, "merge "+collection.String()))
	c.metrics.IncSync(collection.String(), metrics.OutcomeFailed)
}

// clearFailed records a merged collection whose local copy survived. Over HTTP
// the next merge of the same lines replays under the same idempotency key.
func (c *Coordinator) clearFailed(ctx context.Context, collection enums.Collection, err error) {
	ctx = c.logg.WithCollection(ctx, collection.String())
	c.logg.Error(ctx, "merged collection could not be cleared locally", pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, "clear "+collection.String()))
	c.metrics.IncStoreFailure(collection.String(), "clear_after_merge")
}
