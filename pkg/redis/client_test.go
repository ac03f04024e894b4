package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSetGetDelLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := NewFromCmdable(mock)

	key := client.LocalStoreKey("guest-1", "cart")
	if err := client.Set(ctx, key, `{"items":[]}`, time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls[key] != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", mock.ttls[key])
	}

	raw, err := client.GetBytes(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `{"items":[]}` {
		t.Fatalf("unexpected payload %q", raw)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := NewFromCmdable(newMockCmdable())

	first, err := client.SetNX(ctx, "k", "v", time.Minute)
	if err != nil || !first {
		t.Fatalf("expected first SetNX to win, got %v %v", first, err)
	}
	second, err := client.SetNX(ctx, "k", "v2", time.Minute)
	if err != nil || second {
		t.Fatalf("expected second SetNX to lose, got %v %v", second, err)
	}
}

func TestIncrWithTTLSetsExpiryOnFirstHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := NewFromCmdable(mock)
	key := client.RateLimitKey("guest", "1.2.3.4")

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
		if want == 1 {
			delete(mock.ttls, key)
		}
	}
	if _, ok := mock.ttls[key]; ok {
		t.Fatal("ttl should only be set on the first increment")
	}
}

func TestPublishRecordsChannel(t *testing.T) {
	mock := newMockCmdable()
	client := NewFromCmdable(mock)
	if err := client.Publish(context.Background(), "sf:signal:cart-changed", ""); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(mock.published) != 1 || mock.published[0] != "sf:signal:cart-changed" {
		t.Fatalf("unexpected publishes %v", mock.published)
	}
}

func TestPSubscribeRequiresLiveConnection(t *testing.T) {
	client := NewFromCmdable(newMockCmdable())
	if _, err := client.PSubscribe(context.Background(), "sf:signal:*"); err == nil {
		t.Fatal("expected error without live connection")
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail on empty client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "sf:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.LocalStoreKey("guest-1", "wishlist"); got != "sf:local:guest-1:wishlist" {
		t.Fatalf("unexpected local store key %s", got)
	}
	if got := client.RateLimitKey("guest", "ip"); got != "sf:rl:guest:ip" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.LocalStoreKey("", "cart"); got != "sf:local:cart" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

type mockCmdable struct {
	data      map[string]string
	ttls      map[string]time.Duration
	published []string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	var n int64
	fmt.Sscan(m.data[key], &n)
	n++
	m.data[key] = fmt.Sprint(n)
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	m.published = append(m.published, channel)
	return redis.NewIntResult(1, nil)
}
