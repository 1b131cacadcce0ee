package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cschone/bikefit/pkg/errors"
)

// MemoryStore keeps bikes in a map. Intended for tests and local use.
type MemoryStore struct {
	mu    sync.RWMutex
	bikes map[string]*Bike
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bikes: make(map[string]*Bike)}
}

// Get retrieves a bike by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bike, ok := s.bikes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "bike not found: %s", id)
	}
	cp := *bike
	return &cp, nil
}

// List returns all stored bikes, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Bike, 0, len(s.bikes))
	for _, bike := range s.bikes {
		cp := *bike
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Put inserts or replaces a bike.
func (s *MemoryStore) Put(_ context.Context, bike *Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *bike
	s.bikes[bike.ID] = &cp
	return nil
}

// Delete removes a bike.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bikes, id)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
