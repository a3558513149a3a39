package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-process Store. Contents are lost when the process exits.
type MemStore struct {
	mu   sync.RWMutex
	rows map[string]Row
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]Row)}
}

func (s *MemStore) EnsureTable(context.Context) error { return nil }

func (s *MemStore) All(context.Context) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	return &r, nil
}

func (s *MemStore) Upsert(_ context.Context, r Row) error {
	s.mu.Lock()
	s.rows[r.ID] = r
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Update(_ context.Context, id, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	r.Title, r.Description = title, description
	s.rows[id] = r
	return nil
}

func (s *MemStore) SetCompleted(_ context.Context, id string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.Completed = completed
		s.rows[id] = r
	}
	return nil
}

func (s *MemStore) Delete(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

func (s *MemStore) DeleteAll(context.Context) error {
	s.mu.Lock()
	s.rows = make(map[string]Row)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) DeleteCompleted(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.rows {
		if r.Completed {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}
