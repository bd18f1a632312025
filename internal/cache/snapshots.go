package cache

import (
	"context"
	"time"
)

// Snapshot is the result of a lookup. Fresh reports whether the entry is
// younger than the service's TTL; stale entries are still returned.
type Snapshot[V any] struct {
	Value     V
	FetchedAt time.Time
	Fresh     bool
}

// Snapshots layers a freshness window over a Store. It never deletes: a
// stale entry stays readable until a successful refresh replaces it.
type Snapshots[V any] struct {
	store Store[V]
	ttl   time.Duration
	now   func() time.Time
}

func NewSnapshots[V any](store Store[V], ttl time.Duration) *Snapshots[V] {
	return &Snapshots[V]{store: store, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Tests use it to age entries.
func (s *Snapshots[V]) WithClock(now func() time.Time) *Snapshots[V] {
	s.now = now
	return s
}

func (s *Snapshots[V]) Lookup(ctx context.Context, key string) (Snapshot[V], bool, error) {
	entry, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return Snapshot[V]{}, false, err
	}
	return Snapshot[V]{
		Value:     entry.Value,
		FetchedAt: entry.FetchedAt,
		Fresh:     s.now().Sub(entry.FetchedAt) < s.ttl,
	}, true, nil
}

func (s *Snapshots[V]) Put(ctx context.Context, key string, value V) error {
	return s.store.Set(ctx, key, Entry[V]{Value: value, FetchedAt: s.now()})
}
