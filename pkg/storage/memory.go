package storage

import (
	"context"
	"sync"
)

// MemoryStore is a volatile Store used in tests and as a fallback when no
// durable backend is wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: map[string]string{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.entries[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
