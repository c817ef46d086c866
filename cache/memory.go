package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// MemoryStoreConfig configures the in-process store.
type MemoryStoreConfig struct {
	// MaxEntries is the capacity of the store. Inserting a new key at
	// capacity evicts the least-recently-used entry.
	// Default: 1000
	MaxEntries int

	// DefaultTTL is applied when Set is called with ttl <= 0.
	// Default: 5 minutes
	DefaultTTL time.Duration

	// Now overrides the time source. Used in tests.
	Now func() time.Time
}

// MemoryStore is the in-process cache tier: per-entry TTL with strict LRU
// eviction under capacity pressure. Expired entries are removed lazily on
// read; no sweeper goroutine runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	config  MemoryStoreConfig
}

type memoryEntry struct {
	key        string
	value      []byte
	insertedAt time.Time
	ttl        time.Duration
}

// NewMemoryStore creates a new in-process store.
func NewMemoryStore(config MemoryStoreConfig) *MemoryStore {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &MemoryStore{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		config:  config,
	}
}

// Get retrieves a value. Returns (nil, false) on miss or expiry.
// A hit marks the entry as most recently used.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*memoryEntry)
	if s.expired(entry) {
		s.removeLocked(elem)
		return nil, false
	}

	s.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores a value. ttl <= 0 uses the default TTL. An existing key is
// overwritten in place and marked most recently used.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.insertedAt = s.config.Now()
		entry.ttl = ttl
		s.order.MoveToFront(elem)
		return
	}

	if s.order.Len() >= s.config.MaxEntries {
		s.evictOldestLocked()
	}

	elem := s.order.PushFront(&memoryEntry{
		key:        key,
		value:      value,
		insertedAt: s.config.Now(),
		ttl:        ttl,
	})
	s.entries[key] = elem
}

// Delete removes a value. Idempotent.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.removeLocked(elem)
	}
}

// DeleteMatching removes all entries whose key contains substr and returns
// how many were removed.
func (s *MemoryStore) DeleteMatching(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, elem := range s.entries {
		if strings.Contains(key, substr) {
			s.removeLocked(elem)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// Len returns the number of resident entries, including any that have
// expired but not yet been read.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// MaxEntries returns the configured capacity.
func (s *MemoryStore) MaxEntries() int {
	return s.config.MaxEntries
}

// DefaultTTL returns the configured default TTL.
func (s *MemoryStore) DefaultTTL() time.Duration {
	return s.config.DefaultTTL
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return s.config.Now().Sub(entry.insertedAt) > entry.ttl
}

func (s *MemoryStore) evictOldestLocked() {
	if elem := s.order.Back(); elem != nil {
		s.removeLocked(elem)
	}
}

func (s *MemoryStore) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(s.entries, entry.key)
	s.order.Remove(elem)
}
