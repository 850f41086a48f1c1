// Package cache stores upstream responses for a fixed revalidation window.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a byte cache with per-entry expiry.
// A miss is reported as (nil, false, nil); errors are transport failures.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close()
}

// New returns a valkey-backed store when url is set, otherwise an in-process one.
func New(url string) (Store, error) {
	if strings.TrimSpace(url) == "" {
		return NewMemoryStore(DefaultMaxEntries), nil
	}
	return NewValkeyStore(url)
}

// DefaultMaxEntries bounds the in-process store.
const DefaultMaxEntries = 256

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	items      map[string]memoryEntry
	now        func() time.Time
}

// NewMemoryStore creates a store holding at most maxEntries live entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		items:      make(map[string]memoryEntry, maxEntries),
		now:        time.Now,
	}
}

// Get returns a copy of the stored value if it has not expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(ent.expiresAt) {
		delete(s.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(ent.value))
	copy(out, ent.value)
	return out, true, nil
}

// Set stores value until ttl elapses. A non-positive ttl deletes the key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		delete(s.items, key)
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = memoryEntry{value: stored, expiresAt: s.now().Add(ttl)}
	s.evictIfNeeded()
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len reports the number of entries, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close is a no-op.
// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

// evictIfNeeded drops expired entries first, then the entries closest to expiry.
func (s *MemoryStore) evictIfNeeded() {
	if len(s.items) <= s.maxEntries {
		return
	}
	now := s.now()
	for k, ent := range s.items {
		if !now.Before(ent.expiresAt) {
			delete(s.items, k)
		}
	}
	for len(s.items) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, ent := range s.items {
			if oldestKey == "" || ent.expiresAt.Before(oldest) {
				oldestKey, oldest = k, ent.expiresAt
			}
		}
		delete(s.items, oldestKey)
	}
}
