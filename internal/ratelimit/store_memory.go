package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements Store with a per-key sliding window. Sliding
// windows avoid the burst-at-the-boundary problem of fixed windows. Not
// distributed; use the Redis store behind a load balancer.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string][]time.Time)}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	kept := s.windows[key][:0]
	for _, ts := range s.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		s.windows[key] = kept
		return &Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   kept[0].Add(window),
			Limit:     limit,
		}, nil
	}

	kept = append(kept, now)
	s.windows[key] = kept
	return &Result{
		Allowed:   true,
		Remaining: limit - len(kept),
		ResetAt:   kept[0].Add(window),
		Limit:     limit,
	}, nil
}
