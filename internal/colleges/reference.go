package colleges

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedSource wraps a Source and caches non-empty states/districts answers for a TTL.
// Concurrent lookups of the same key share one upstream call. Searches pass through.
type CachedSource struct {
	base  Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	values  []string
	expires time.Time
}

// NewCachedSource constructs a CachedSource. A non-positive ttl disables caching but keeps deduplication.
func NewCachedSource(base Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		base:    base,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// States returns the cached state list or fetches it.
func (s *CachedSource) States(ctx context.Context) ([]string, error) {
	return s.lookup(ctx, "states", func(ctx context.Context) ([]string, error) {
		return s.base.States(ctx)
	})
}

// Districts returns the cached districts of state or fetches them.
func (s *CachedSource) Districts(ctx context.Context, state string) ([]string, error) {
	return s.lookup(ctx, "districts:"+state, func(ctx context.Context) ([]string, error) {
		return s.base.Districts(ctx, state)
	})
}

// Search is never cached.
func (s *CachedSource) Search(ctx context.Context, q Query) (RemotePage, error) {
	return s.base.Search(ctx, q)
}

func (s *CachedSource) lookup(ctx context.Context, key string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	if values, ok := s.cached(key); ok {
		return values, nil
	}
	// The shared fetch outlives any single caller; each caller still stops
	// waiting on its own cancellation below.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		values, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 && s.ttl > 0 {
			s.mu.Lock()
			s.entries[key] = cacheEntry{values: values, expires: s.now().Add(s.ttl)}
			s.mu.Unlock()
		}
		return values, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]string(nil), res.Val.([]string)...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CachedSource) cached(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expires) {
		return nil, false
	}
	return append([]string(nil), entry.values...), true
}

var _ Source = (*CachedSource)(nil)
