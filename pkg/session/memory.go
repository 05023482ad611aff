package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are stored
// encoded, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryStore creates a store that forgets sessions after ttl and holds
// at most maxSessions. Non-positive values take the package defaults.
func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		max:     maxSessions,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decode(e.data)
}

// Set stores sess. Its expiry is the earlier of sess.ExpiresAt and the
// store ttl. When the store is full the least recently updated session is
// evicted.
func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	now := s.now()
	expires := now.Add(s.ttl)
	if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(expires) {
		expires = sess.ExpiresAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[sess.ID]; !exists && len(s.entries) >= s.max {
		s.cleanupLocked(now)
		for len(s.entries) >= s.max {
			s.evictOldestLocked()
		}
	}
	s.entries[sess.ID] = memoryEntry{data: data, updatedAt: now, expiresAt: expires}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked(s.now()), nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) cleanupLocked(now time.Time) int {
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.entries {
		if oldestID == "" || e.updatedAt.Before(oldest) || (e.updatedAt.Equal(oldest) && id < oldestID) {
			oldestID, oldest = id, e.updatedAt
		}
	}
	delete(s.entries, oldestID)
}

var _ Store = (*MemoryStore)(nil)
