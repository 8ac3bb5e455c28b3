// Package store keeps the airline registry: principal records and the
// registry-wide counters, committed together.
package store

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"flightsurety/internal/airline/models"
	"flightsurety/pkg/domain"
	"flightsurety/pkg/platform/sentinel"
)

// ErrNotFound is returned when a principal has no record.
var ErrNotFound = sentinel.ErrNotFound

// ErrAlreadyExists is returned when creating over an existing record.
var ErrAlreadyExists = sentinel.ErrAlreadyUsed

type InMemoryStore struct {
	mu       sync.RWMutex
	airlines map[domain.PrincipalID]*models.Airline
	counters models.Counters
}

func New() *InMemoryStore {
	return &InMemoryStore{airlines: make(map[domain.PrincipalID]*models.Airline)}
}

// Create inserts a new record and applies delta to the counters.
func (s *InMemoryStore) Create(_ context.Context, airline *models.Airline, delta models.CounterDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.airlines[airline.ID]; ok {
		return ErrAlreadyExists
	}
	s.airlines[airline.ID] = airline.Clone()
	s.counters = s.counters.Apply(delta)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.PrincipalID) (*models.Airline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.airlines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// Execute runs fn against a copy of the record and commits the copy together
// with the returned counter delta only when fn succeeds.
func (s *InMemoryStore) Execute(_ context.Context, id domain.PrincipalID, fn func(*models.Airline) (models.CounterDelta, error)) (*models.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.airlines[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	delta, err := fn(working)
	if err != nil {
		return nil, err
	}
	s.airlines[id] = working
	s.counters = s.counters.Apply(delta)
	return working.Clone(), nil
}

func (s *InMemoryStore) Counters(_ context.Context) (models.Counters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters, nil
}

// List returns every record sorted by principal.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Airline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Airline, 0, len(s.airlines))
	for _, a := range s.airlines {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Airline) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}
