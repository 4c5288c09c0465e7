package tasks

import (
	"context"
	"sync"
)

// MemoryStore keeps tasks in memory. Used by the memory backend and tests.
type MemoryStore struct {
	mu     sync.Mutex
	lastID int64
	tasks  []Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, title string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	t := Task{ID: s.lastID, Title: title}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, patch Patch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if patch.Title != nil {
			s.tasks[i].Title = *patch.Title
		}
		if patch.Done != nil {
			s.tasks[i].Done = *patch.Done
		}
		return s.tasks[i], nil
	}
	return Task{}, ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
