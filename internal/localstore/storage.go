package localstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-commerce/pkg/enums"
	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Storage.Get when no record exists for the key.
var ErrNotFound = errors.New("local store record not found")

// Key identifies one persisted collection record.
type Key struct {
	Namespace  string
	Collection enums.Collection
}

func (k Key) String() string {
	ns := strings.TrimSpace(k.Namespace)
	if ns == "" {
		return k.Collection.String()
	}
	return ns + ":" + k.Collection.String()
}

// Storage is the persistence surface behind a local store. Implementations may
// fail at any time; stores absorb those failures.
type Storage interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
}

// MemoryStorage keeps records in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key.String()]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStorage) Set(_ context.Context, key Key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.mu.Lock()
	m.data[key.String()] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, key.String())
	m.mu.Unlock()
	return nil
}

// RedisClient is the subset of pkg/redis.Client used by RedisStorage.
type RedisClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LocalStoreKey(namespace, collection string) string
}

// RedisStorage keeps guest records in redis. Every write refreshes the TTL so
// an active guest session does not expire.
type RedisStorage struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisStorage(client RedisClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) Get(ctx context.Context, key Key) ([]byte, error) {
	value, err := r.client.GetBytes(ctx, r.redisKey(key))
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	return value, err
}

func (r *RedisStorage) Set(ctx context.Context, key Key, value []byte) error {
	return r.client.Set(ctx, r.redisKey(key), value, r.ttl)
}

func (r *RedisStorage) Delete(ctx context.Context, key Key) error {
	return r.client.Del(ctx, r.redisKey(key))
}

func (r *RedisStorage) redisKey(key Key) string {
	return r.client.LocalStoreKey(key.Namespace, key.Collection.String())
}
