package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a backend when the key holds no record
// yet. The store maps it to an empty snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Backend is the injectable persistence layer: one opaque payload per
// key. The in-memory implementation backs tests, the gorm one backs
// production.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// MemoryBackend keeps payloads in a map. Safe for concurrent use.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.data[key] = cp
	return nil
}
