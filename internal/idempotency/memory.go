package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record    *Record
	expiresAt time.Time
}

// MemoryStore is the single-instance fallback used when no Redis URL is
// configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Reserve(_ context.Context, key string, ttl time.Duration) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		if entry.record == nil {
			return nil, ErrInProgress
		}
		record := *entry.record
		return &record, nil
	}

	s.entries[key] = memoryEntry{expiresAt: now.Add(ttl)}
	s.sweepLocked(now)
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, record Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{record: &record, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
