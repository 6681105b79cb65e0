package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached value with its expiry.
type entry struct {
	value     []byte
	expiresAt time.Time // Zero means no expiry
}

// expired reports whether the entry is past its expiry at time now.
func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-memory implementation of Store with lazy expiry.
// Thread-safe via RWMutex. Intended for tests and single-node deployments
// without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	timeNow func() time.Time // For testability
}

// NewMemoryStore creates a new in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		timeNow: time.Now,
	}
}

// Get returns the cached value for key. Expired entries are removed on
// access rather than by a background sweeper.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if e.expired(s.timeNow()) {
		s.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read.
		if cur, ok := s.entries[key]; ok && cur.expired(s.timeNow()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	valueCopy := append([]byte(nil), e.value...)
	return valueCopy, true, nil
}

// Set stores value under key with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.timeNow().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the given keys.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries, excluding expired ones.
func (s *MemoryStore) Len() int {
	now := s.timeNow()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
