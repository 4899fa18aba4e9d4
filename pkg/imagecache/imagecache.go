// Package imagecache stores downloaded image fill bytes by their Figma
// image hash. Hashes are content addressed, so entries never go stale.
package imagecache

import (
	"context"
	"sync"
)

// Cache stores image bytes by hash. Get reports a miss with ok=false and a
// nil error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, hash string) (data []byte, ok bool, err error)
	Set(ctx context.Context, hash string, data []byte) error
}

// Memory is an in-process Cache. The zero value is not usable; call NewMemory.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns an empty memory cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, hash string) ([]byte, bool, error) {
	m.mu.RLock()
	data, ok := m.items[hash]
	m.mu.RUnlock()
	return data, ok, nil
}

func (m *Memory) Set(_ context.Context, hash string, data []byte) error {
	m.mu.Lock()
	m.items[hash] = data
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached images.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Tiered reads through its layers in order and, on a hit in a slower
// layer, copies the bytes into every faster layer before it. Writes go to
// all layers.
type Tiered []Cache

func (t Tiered) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	for i, c := range t {
		data, ok, err := c.Get(ctx, hash)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		for _, faster := range t[:i] {
			if err := faster.Set(ctx, hash, data); err != nil {
				return nil, false, err
			}
		}
		return data, true, nil
	}
	return nil, false, nil
}

func (t Tiered) Set(ctx context.Context, hash string, data []byte) error {
	for _, c := range t {
		if err := c.Set(ctx, hash, data); err != nil {
			return err
		}
	}
	return nil
}
