package forecastcache

import (
	"context"
	"sync"
	"time"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
)

type memoryEntry struct {
	forecast  map[string]nights.NightConditions
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when no Valkey is configured,
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (map[string]nights.NightConditions, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.forecast, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, forecast map[string]nights.NightConditions, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{forecast: forecast, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ Store = (*MemoryStore)(nil)
