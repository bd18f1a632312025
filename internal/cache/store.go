package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached value together with the time it was fetched upstream.
type Entry[V any] struct {
	Value     V         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store is a key-value backend for snapshots. Implementations never expire
// entries on their own; an entry lives until it is overwritten.
type Store[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool, error)
	Set(ctx context.Context, key string, entry Entry[V]) error
}

type MemoryStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
}

func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{entries: make(map[string]Entry[V])}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (Entry[V], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[V]) Set(_ context.Context, key string, entry Entry[V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
