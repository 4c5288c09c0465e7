package storage

import (
	"context"
	"sync"
)

// MemoryStore implements StateStore in memory. Used by the memory backend
// and by tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ok {
		return nil, false, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.ok = true
	return nil
}
