// Package notify carries payload-less change signals from the code that
// mutates a collection to whoever needs to re-read it.
package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
)

// Signal names a change. It carries no data; receivers re-read state.
type Signal string

const (
	SignalCartChanged     Signal = "cart-changed"
	SignalWishlistChanged Signal = "wishlist-changed"
)

// SignalFor returns the change signal of a collection.
func SignalFor(collection enums.Collection) Signal {
	if collection == enums.CollectionWishlist {
		return SignalWishlistChanged
	}
	return SignalCartChanged
}

// Subscription delivers at least one tick per publish that happens while it
// is open. Bursts may coalesce into a single tick.
type Subscription interface {
	C() <-chan struct{}
	Close()
}

// Bus is an explicit publish/subscribe service. Publishing is fire-and-forget.
type Bus interface {
	Publish(ctx context.Context, signal Signal) error
	Subscribe(signal Signal) Subscription
}

// MemoryBus fans signals out to subscribers in the same process.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[Signal]map[*memorySubscription]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[Signal]map[*memorySubscription]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, signal Signal) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[signal] {
		sub.notify()
	}
	return nil
}

func (b *MemoryBus) Subscribe(signal Signal) Subscription {
	sub := &memorySubscription{
		ch:     make(chan struct{}, 1),
		bus:    b,
		signal: signal,
	}
	b.mu.Lock()
	if b.subs[signal] == nil {
		b.subs[signal] = make(map[*memorySubscription]struct{})
	}
	b.subs[signal][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Subscribers reports how many subscriptions are open for signal.
func (b *MemoryBus) Subscribers(signal Signal) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[signal])
}

func (b *MemoryBus) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[sub.signal]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.signal)
	}
}

type memorySubscription struct {
	ch     chan struct{}
	bus    *MemoryBus
	signal Signal
	once   sync.Once
}

func (s *memorySubscription) C() <-chan struct{} {
	return s.ch
}

// notify never blocks; a pending tick already tells the receiver to re-read.
func (s *memorySubscription) notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *memorySubscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
}

// Scoped namespaces every signal of bus under scope, so independent owners
// (for example guest sessions) can share one bus without crosstalk.
func Scoped(bus Bus, scope string) Bus {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return bus
	}
	return scopedBus{inner: bus, scope: scope}
}

type scopedBus struct {
	inner Bus
	scope string
}

func (s scopedBus) name(signal Signal) Signal {
	return Signal(s.scope + ":" + string(signal))
}

func (s scopedBus) Publish(ctx context.Context, signal Signal) error {
	return s.inner.Publish(ctx, s.name(signal))
}

func (s scopedBus) Subscribe(signal Signal) Subscription {
	return s.inner.Subscribe(s.name(signal))
}

// Nop discards every signal.
type Nop struct{}

func (Nop) Publish(context.Context, Signal) error { return nil }

func (Nop) Subscribe(Signal) Subscription {
	ch := make(chan struct{})
	return &nopSubscription{ch: ch}
}

type nopSubscription struct {
	ch   chan struct{}
	once sync.Once
}

func (n *nopSubscription) C() <-chan struct{} { return n.ch }

func (n *nopSubscription) Close() { n.once.Do(func() { close(n.ch) }) }
