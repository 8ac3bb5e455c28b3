// Package allowlist stores the trusted collaborator identities.
package allowlist

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"flightsurety/pkg/domain"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	callers map[domain.CallerID]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{callers: make(map[domain.CallerID]struct{})}
}

func (s *InMemoryStore) Add(_ context.Context, id domain.CallerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callers[id] = struct{}{}
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, id domain.CallerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callers, id)
	return nil
}

func (s *InMemoryStore) Contains(_ context.Context, id domain.CallerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.callers[id]
	return ok, nil
}

// List returns the allow-list sorted by address.
func (s *InMemoryStore) List(_ context.Context) ([]domain.CallerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]domain.CallerID, 0, len(s.callers))
	for id := range s.callers {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b domain.CallerID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids, nil
}
