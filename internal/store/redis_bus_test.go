package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisBus(t *testing.T) *RedisBus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBus(rdb, zerolog.Nop())
}

func TestRedisBus_PublishReachesSubscriber(t *testing.T) {
	bus := newMiniredisBus(t)

	var got atomic.Value
	unsub := bus.Subscribe(testKey, func(origin string) { got.Store(origin) })
	defer unsub()

	// pub/sub subscription setup is asynchronous; retry until the
	// subscriber is wired
	require.Eventually(t, func() bool {
		if err := bus.Publish(context.Background(), testKey, "origin-a"); err != nil {
			return false
		}
		v, ok := got.Load().(string)
		return ok && v == "origin-a"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisBus_KeysAreIsolated(t *testing.T) {
	bus := newMiniredisBus(t)

	var count atomic.Int32
	unsub := bus.Subscribe("immofin:banque:other", func(string) { count.Add(1) })
	defer unsub()

	require.NoError(t, bus.Publish(context.Background(), testKey, "origin-a"))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, count.Load(), "message for another key must not be delivered")
}

func TestRedisBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := newMiniredisBus(t)

	var count atomic.Int32
	unsub := bus.Subscribe(testKey, func(string) { count.Add(1) })

	require.Eventually(t, func() bool {
		_ = bus.Publish(context.Background(), testKey, "x")
		return count.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	unsub()
	before := count.Load()
	_ = bus.Publish(context.Background(), testKey, "x")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, count.Load())
}
