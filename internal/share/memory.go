package share

import (
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore keeps shared articles in process memory. Records live for the
// process lifetime; there is no eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Create(article json.RawMessage, articleURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := newID(articleURL, now, attempt)
		if _, exists := s.records[id]; exists {
			continue
		}
		s.records[id] = &Record{
			Article:   article,
			CreatedAt: now,
			Views:     0,
		}
		return id, nil
	}

	return "", errIDSpaceExhausted
}

// Get returns the record and increments its view counter. The increment
// happens under the write lock, so concurrent reads of the same ID never lose
// counts.
func (s *MemoryStore) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	record.Views++

	// Copy so callers never share the mutable record.
	out := *record
	return &out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored records, for tests and stats.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
