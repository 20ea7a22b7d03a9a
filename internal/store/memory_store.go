package store

import (
	"context"
	"sync"

	"github.com/jjenkins/adressen/internal/model"
)

// MemoryStore keeps cache entries in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.CacheEntry)}
}

// Get returns a copy of the entry for key
func (s *MemoryStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	e.Body = append([]byte(nil), e.Body...)
	return &e, nil
}

// Put stores entry, replacing any previous entry for the same key
func (s *MemoryStore) Put(_ context.Context, entry *model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	e.Body = append([]byte(nil), entry.Body...)
	s.entries[entry.Key] = e
	return nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	return nil
}
