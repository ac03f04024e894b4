// Package localstore keeps the anonymous, pre-login copy of a cart or
// wishlist. Reads never fail: a missing, unreadable or corrupt record reads as
// empty. Write failures are logged and counted, and the caller still gets the
// in-memory result.
package localstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-commerce/internal/notify"
	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/angelmondragon/storefront-commerce/pkg/metrics"
)

// Options wires a store to its collaborators. Storage is required.
type Options struct {
	Storage   Storage
	Namespace string
	Bus       notify.Bus
	Logger    *logger.Logger
	Metrics   *metrics.CommerceMetrics
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Storage == nil {
		o.Storage = NewMemoryStorage()
	}
	if o.Bus == nil {
		o.Bus = notify.Nop{}
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// collection holds the persistence plumbing shared by both stores.
type collection[S any] struct {
	mu      sync.Mutex
	kind    enums.Collection
	rec     record[S]
	empty   func() S
	bus     notify.Bus
	logg    *logger.Logger
	metrics *metrics.CommerceMetrics
}

func newCollection[S any](kind enums.Collection, opts Options, empty func() S) *collection[S] {
	return &collection[S]{
		kind:    kind,
		rec:     record[S]{storage: opts.Storage, key: Key{Namespace: opts.Namespace, Collection: kind}},
		empty:   empty,
		bus:     opts.Bus,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}
}

func (c *collection[S]) ctx(ctx context.Context) context.Context {
	return c.logg.WithCollection(ctx, c.kind.String())
}

func (c *collection[S]) read(ctx context.Context) S {
	snapshot, err := c.rec.load(ctx)
	switch {
	case err == nil:
		return snapshot
	case errors.Is(err, ErrNotFound):
		return c.empty()
	case errors.Is(err, errCorrupt):
		c.logg.WarnErr(c.ctx(ctx), "local store record unreadable, treating as empty", err)
		c.metrics.IncStoreFailure(c.kind.String(), "decode")
		return c.empty()
	default:
		c.logg.Error(c.ctx(ctx), "local store read failed", err)
		c.metrics.IncStoreFailure(c.kind.String(), "read")
		return c.empty()
	}
}

func (c *collection[S]) write(ctx context.Context, snapshot S) {
	if err := c.rec.save(ctx, snapshot); err != nil {
		c.logg.Error(c.ctx(ctx), "local store write failed", err)
		c.metrics.IncStoreFailure(c.kind.String(), "write")
	}
	c.publish(ctx)
}

// clear deletes the record. When the delete fails it overwrites the record
// with an empty snapshot instead, and only reports an error when neither
// write landed.
func (c *collection[S]) clear(ctx context.Context) error {
	defer c.publish(ctx)
	err := c.rec.clear(ctx)
	if err == nil {
		return nil
	}
	c.logg.WarnErr(c.ctx(ctx), "local store delete failed, overwriting with empty record", err)
	c.metrics.IncStoreFailure(c.kind.String(), "clear")
	if saveErr := c.rec.save(ctx, c.empty()); saveErr != nil {
		c.logg.Error(c.ctx(ctx), "local store clear failed", saveErr)
		c.metrics.IncStoreFailure(c.kind.String(), "write")
		return saveErr
	}
	return nil
}

func (c *collection[S]) publish(ctx context.Context) {
	if err := c.bus.Publish(ctx, notify.SignalFor(c.kind)); err != nil {
		c.logg.WarnErr(c.ctx(ctx), "change signal not delivered", err)
	}
}

// snapshot returns the persisted bytes as stored, or nil when absent or
// unreadable.
func (c *collection[S]) snapshot(ctx context.Context) []byte {
	raw, err := c.rec.raw(ctx)
	if err != nil {
		return nil
	}
	return raw
}
