package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const changeChannelPrefix = "immofin:changes:"

// RedisBus fans change notifications out to every process observing
// the same snapshot key, via pub/sub. Message payload is the origin id
// only; receivers re-read the snapshot from their backend.
type RedisBus struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisBus(rdb *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, log: log.With().Str("component", "redis_bus").Logger()}
}

func (b *RedisBus) Publish(ctx context.Context, key, origin string) error {
	return b.rdb.Publish(ctx, changeChannelPrefix+key, origin).Err()
}

func (b *RedisBus) Subscribe(key string, fn func(origin string)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.rdb.Subscribe(ctx, changeChannelPrefix+key)

	go func() {
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		if err := sub.Close(); err != nil {
			b.log.Warn().Err(err).Str("key", key).Msg("closing change subscription")
		}
	}
}
