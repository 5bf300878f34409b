package store

import (
	"context"
	"sync"
)

// Bus carries change notifications across contexts observing the same
// snapshot key. The payload is the publisher's origin id only: a
// receiver must re-read the snapshot, there is no partial update.
type Bus interface {
	Publish(ctx context.Context, key, origin string) error
	// Subscribe registers fn for messages on key and returns a disposer.
	// fn receives the publisher's origin id.
	Subscribe(key string, fn func(origin string)) (unsubscribe func())
}

// MemoryBus is the in-process bus used in tests and when no redis is
// configured.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(string)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]func(string))}
}

func (b *MemoryBus) Publish(_ context.Context, key, origin string) error {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(origin)
	}
	return nil
}

func (b *MemoryBus) Subscribe(key string, fn func(string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(string))
	}
	id := b.nextID
	b.nextID++
	b.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[key], id)
			b.mu.Unlock()
		})
	}
}
