// Package storemock provides function-backed test doubles for the
// snapshot store's injectable pieces. Only the hooks a test sets are
// active; everything else behaves like an empty, always-working
// backend.
package storemock

import (
	"context"
	"sync"

	"immofin-backend/internal/store"
)

// Backend satisfies store.Backend. Set the Fn fields you need.
type Backend struct {
	mu     sync.Mutex
	data   map[string][]byte
	LoadFn func(ctx context.Context, key string) ([]byte, error)
	SaveFn func(ctx context.Context, key string, payload []byte) error
}

func NewBackend() *Backend { return &Backend{data: make(map[string][]byte)} }

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	if b.LoadFn != nil {
		return b.LoadFn(ctx, key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return raw, nil
}

func (b *Backend) Save(ctx context.Context, key string, payload []byte) error {
	if b.SaveFn != nil {
		return b.SaveFn(ctx, key, payload)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = payload
	return nil
}

// Bus satisfies store.Bus; publishes are recorded, subscriptions are
// inert unless PublishFn/SubscribeFn intercept them.
type Bus struct {
	mu          sync.Mutex
	Published   []string
	PublishFn   func(ctx context.Context, key, origin string) error
	SubscribeFn func(key string, fn func(origin string)) func()
}

func (b *Bus) Publish(ctx context.Context, key, origin string) error {
	if b.PublishFn != nil {
		return b.PublishFn(ctx, key, origin)
	}
	b.mu.Lock()
	b.Published = append(b.Published, key)
	b.mu.Unlock()
	return nil
}

func (b *Bus) Subscribe(key string, fn func(origin string)) func() {
	if b.SubscribeFn != nil {
		return b.SubscribeFn(key, fn)
	}
	return func() {}
}
