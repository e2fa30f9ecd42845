package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the entry capacity used when NewMemoryStore is given
// a non-positive size.
const DefaultMemorySize = 10000

// MemoryStore is an in-process store bounded by an LRU policy.
// It is the default backend for the HTTP service when no shared backend is
// configured, and the store used throughout the tests.
type MemoryStore struct {
	mu     sync.Mutex
	items  *lru.Cache[string, entry]
	byTag  map[string]map[string]struct{}
	now    func() time.Time
	closed bool
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	s := &MemoryStore{
		byTag: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
	// NewWithEvict only fails for non-positive sizes.
	s.items, _ = lru.NewWithEvict[string, entry](size, s.untag)
	return s
}

// WithClock replaces the store's time source. It is meant for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Get retrieves a value from the store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	e, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		s.items.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.Data...), true, nil
}

// Set stores a value in the store.
func (s *MemoryStore) Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	// Adding an existing key does not fire the eviction callback, so drop
	// the old tags explicitly.
	if old, ok := s.items.Peek(key); ok {
		s.untag(key, old)
	}

	e := entry{
		Data:      append([]byte(nil), data...),
		ExpiresAt: expiresAt,
		Tags:      normalizeTags(tags),
	}
	for _, t := range e.Tags {
		keys, ok := s.byTag[t]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
	s.items.Add(key, e)
	return nil
}

// Delete removes a value from the store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.items.Remove(key)
	return nil
}

// InvalidateTags removes every entry carrying any of tags.
func (s *MemoryStore) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	victims := make(map[string]struct{})
	for _, t := range tags {
		for key := range s.byTag[t] {
			victims[key] = struct{}{}
		}
	}
	for key := range victims {
		s.items.Remove(key)
	}
	return len(victims), nil
}

// Len returns the number of entries currently held, including expired ones
// that have not been read since they expired.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len()
}

// Close drops all entries. Further calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Purge()
	s.closed = true
	return nil
}

// untag removes key from the tag index. It runs as the LRU eviction
// callback, always with s.mu held.
func (s *MemoryStore) untag(key string, e entry) {
	for _, t := range e.Tags {
		keys := s.byTag[t]
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.byTag, t)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
