package store

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is an in-memory KV with per-key expiry, for tests and single-node
// development. Expired entries are dropped lazily on read.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.nowFunc().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: stored, expiresAt: m.nowFunc().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
