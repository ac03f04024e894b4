package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-commerce/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Publisher is the redis surface RedisBus needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
	PSubscribe(ctx context.Context, patterns ...string) (*goredis.PubSub, error)
}

// RedisBus delivers signals to local subscribers immediately and relays them
// to other API instances through redis pub/sub.
type RedisBus struct {
	local  *MemoryBus
	client Publisher
	prefix string
	origin string
	logg   *logger.Logger
}

func NewRedisBus(client Publisher, prefix string, logg *logger.Logger) *RedisBus {
	if logg == nil {
		logg = logger.Nop()
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "sf:signal"
	}
	return &RedisBus{
		local:  NewMemoryBus(),
		client: client,
		prefix: prefix,
		origin: uuid.NewString(),
		logg:   logg,
	}
}

func (b *RedisBus) channel(signal Signal) string {
	return b.prefix + ":" + string(signal)
}

// Publish notifies local subscribers, then relays the signal. A relay failure
// is returned but local delivery has already happened.
func (b *RedisBus) Publish(ctx context.Context, signal Signal) error {
	_ = b.local.Publish(ctx, signal)
	if err := b.client.Publish(ctx, b.channel(signal), b.origin); err != nil {
		return fmt.Errorf("relay signal %s: %w", signal, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(signal Signal) Subscription {
	return b.local.Subscribe(signal)
}

// Listen relays signals published by other instances to local subscribers
// until ctx is done.
func (b *RedisBus) Listen(ctx context.Context) error {
	pubsub, err := b.client.PSubscribe(ctx, b.prefix+":*")
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.prefix, err)
	}
	defer pubsub.Close()

	messages := pubsub.Channel()
	b.logg.Info(ctx, "signal relay listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.deliver(ctx, msg.Channel, msg.Payload)
		}
	}
}

func (b *RedisBus) deliver(ctx context.Context, channel, origin string) {
	if origin == b.origin {
		return
	}
	name, ok := strings.CutPrefix(channel, b.prefix+":")
	if !ok || name == "" {
		return
	}
	_ = b.local.Publish(ctx, Signal(name))
}
