package sentinel

import (
	"context"
	"sync"
	"time"

	"github.com/shipprint/backend/internal/domain/printing"
)

// entry represents a stored marker with optional expiration
type entry struct {
	content   []byte
	expiresAt time.Time // zero means never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore implements SentinelStore using an in-memory map.
// Markers do not survive the process, so it cannot deduplicate across runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps markers forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Has implements printing.SentinelStore
func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	if err := printing.ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || e.expired(s.now()) {
		return false, nil
	}
	return true, nil
}

// Put implements printing.SentinelStore
func (s *MemoryStore) Put(_ context.Context, key string, content []byte) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}
	e := entry{content: append([]byte(nil), content...)}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Remove implements printing.SentinelStore
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Size returns the number of live markers
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	count := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			count++
		}
	}
	return count
}

// Close implements printing.SentinelStore
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	return nil
}

var _ printing.SentinelStore = (*MemoryStore)(nil)
