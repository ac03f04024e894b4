package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	goredis "github.com/redis/go-redis/v9"
)

func TestMemoryBusDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	cart := bus.Subscribe(SignalCartChanged)
	defer cart.Close()
	wishlist := bus.Subscribe(SignalWishlistChanged)
	defer wishlist.Close()

	if err := bus.Publish(context.Background(), SignalCartChanged); err != nil {
		t.Fatalf("publish: %v", err)
	}

	expectTick(t, cart)
	expectNoTick(t, wishlist)
}

func TestMemoryBusCoalescesBursts(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	sub := bus.Subscribe(SignalCartChanged)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		_ = bus.Publish(context.Background(), SignalCartChanged)
	}
	expectTick(t, sub)
	expectNoTick(t, sub)
}

func TestCloseUnsubscribes(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	sub := bus.Subscribe(SignalCartChanged)
	if bus.Subscribers(SignalCartChanged) != 1 {
		t.Fatal("expected one subscriber")
	}
	sub.Close()
	sub.Close()
	if bus.Subscribers(SignalCartChanged) != 0 {
		t.Fatal("expected subscriber to be removed")
	}
	if _, open := <-sub.C(); open {
		t.Fatal("expected channel to be closed")
	}
	if err := bus.Publish(context.Background(), SignalCartChanged); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
}

func TestIndependentBusesDoNotShareState(t *testing.T) {
	t.Parallel()

	first := NewMemoryBus()
	second := NewMemoryBus()
	sub := second.Subscribe(SignalCartChanged)
	defer sub.Close()

	_ = first.Publish(context.Background(), SignalCartChanged)
	expectNoTick(t, sub)
}

func TestScopedBusIsolatesScopes(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus()
	alice := Scoped(bus, "alice")
	bob := Scoped(bus, "bob")
	aliceSub := alice.Subscribe(SignalCartChanged)
	defer aliceSub.Close()
	bobSub := bob.Subscribe(SignalCartChanged)
	defer bobSub.Close()

	_ = alice.Publish(context.Background(), SignalCartChanged)
	expectTick(t, aliceSub)
	expectNoTick(t, bobSub)

	if Scoped(bus, " ") != Bus(bus) {
		t.Fatal("empty scope should return the bus unchanged")
	}
}

func TestSignalFor(t *testing.T) {
	t.Parallel()

	if SignalFor(enums.CollectionCart) != SignalCartChanged {
		t.Fatal("cart should map to cart-changed")
	}
	if SignalFor(enums.CollectionWishlist) != SignalWishlistChanged {
		t.Fatal("wishlist should map to wishlist-changed")
	}
}

func TestRedisBusPublishesLocallyAndRelays(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	bus := NewRedisBus(pub, "sf:signal:", nil)
	sub := bus.Subscribe(SignalWishlistChanged)
	defer sub.Close()

	if err := bus.Publish(context.Background(), SignalWishlistChanged); err != nil {
		t.Fatalf("publish: %v", err)
	}
	expectTick(t, sub)
	if len(pub.channels) != 1 || pub.channels[0] != "sf:signal:wishlist-changed" {
		t.Fatalf("unexpected relay channels %v", pub.channels)
	}
}

func TestRedisBusRelayFailureStillDeliversLocally(t *testing.T) {
	t.Parallel()

	bus := NewRedisBus(&fakePublisher{err: errors.New("down")}, "", nil)
	sub := bus.Subscribe(SignalCartChanged)
	defer sub.Close()

	if err := bus.Publish(context.Background(), SignalCartChanged); err == nil {
		t.Fatal("expected relay error")
	}
	expectTick(t, sub)
}

func TestRedisBusDeliverIgnoresOwnOrigin(t *testing.T) {
	t.Parallel()

	bus := NewRedisBus(&fakePublisher{}, "sf:signal", nil)
	sub := bus.Subscribe(Signal("guest-1:cart-changed"))
	defer sub.Close()

	bus.deliver(context.Background(), "sf:signal:guest-1:cart-changed", bus.origin)
	expectNoTick(t, sub)

	bus.deliver(context.Background(), "other:guest-1:cart-changed", "peer")
	expectNoTick(t, sub)

	bus.deliver(context.Background(), "sf:signal:guest-1:cart-changed", "peer")
	expectTick(t, sub)
}

func TestRedisBusListenReportsSubscribeError(t *testing.T) {
	t.Parallel()

	bus := NewRedisBus(&fakePublisher{subErr: errors.New("no conn")}, "", nil)
	if err := bus.Listen(context.Background()); err == nil {
		t.Fatal("expected listen to fail")
	}
}

func expectTick(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case <-sub.C():
	case <-time.After(time.Second):
		t.Fatal("expected a signal")
	}
}

func expectNoTick(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case <-sub.C():
		t.Fatal("unexpected signal")
	case <-time.After(20 * time.Millisecond):
	}
}

type fakePublisher struct {
	channels []string
	err      error
	subErr   error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, _ any) error {
	if f.err != nil {
		return f.err
	}
	f.channels = append(f.channels, channel)
	return nil
}

func (f *fakePublisher) PSubscribe(context.Context, ...string) (*goredis.PubSub, error) {
	return nil, f.subErr
}
