package cart

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Item
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Item{}}
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

// Add is idempotent: re-adding keeps the original entry.
func (s *MemStore) Add(ctx context.Context, it Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[it.ProductID]; !ok {
		s.m[it.ProductID] = it
	}
	return nil
}

func (s *MemStore) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, productID)
	return nil
}

func (s *MemStore) Contains(ctx context.Context, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[productID]
	return ok, nil
}

// List returns items in the order they were added.
func (s *MemStore) List(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.m))
	for _, it := range s.m {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}
