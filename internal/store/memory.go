package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements Backend.
func (b *MemoryBackend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.values[key]
	return value, ok, nil
}

// Set implements Backend.
func (b *MemoryBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = value
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.values, key)
	return nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	return nil
}
