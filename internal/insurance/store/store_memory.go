// Package store keeps insurance records with their flight and passenger
// indices.
package store

import (
	"context"
	"slices"
	"sync"

	"flightsurety/internal/insurance/models"
	"flightsurety/pkg/domain"
	"flightsurety/pkg/platform/sentinel"
)

var (
	ErrNotFound      = sentinel.ErrNotFound
	ErrAlreadyExists = sentinel.ErrAlreadyUsed
)

type InMemoryStore struct {
	mu          sync.RWMutex
	records     map[domain.InsuranceKey]*models.Insurance
	byFlight    map[domain.FlightKey][]domain.InsuranceKey
	byPassenger map[domain.PrincipalID][]domain.InsuranceKey
}

func New() *InMemoryStore {
	return &InMemoryStore{
		records:     make(map[domain.InsuranceKey]*models.Insurance),
		byFlight:    make(map[domain.FlightKey][]domain.InsuranceKey),
		byPassenger: make(map[domain.PrincipalID][]domain.InsuranceKey),
	}
}

// Create inserts a record and appends it to its flight's index.
func (s *InMemoryStore) Create(_ context.Context, rec *models.Insurance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Key]; ok {
		return ErrAlreadyExists
	}
	s.records[rec.Key] = rec.Clone()
	s.byFlight[rec.FlightKey] = append(s.byFlight[rec.FlightKey], rec.Key)
	return nil
}

func (s *InMemoryStore) FindByKey(_ context.Context, key domain.InsuranceKey) (*models.Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Execute runs fn against a copy of the record and commits it when fn
// succeeds. A record that gains a buyer is appended to that passenger's index.
func (s *InMemoryStore) Execute(_ context.Context, key domain.InsuranceKey, fn func(*models.Insurance) error) (*models.Insurance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if current.Buyer == nil && working.Buyer != nil {
		s.byPassenger[*working.Buyer] = append(s.byPassenger[*working.Buyer], key)
	}
	s.records[key] = working
	return working.Clone(), nil
}

// ExecuteFlight runs fn over copies of every record of a flight, in index
// order, and commits all of them only when fn succeeds.
func (s *InMemoryStore) ExecuteFlight(_ context.Context, flight domain.FlightKey, fn func([]*models.Insurance) error) ([]*models.Insurance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.byFlight[flight]
	working := make([]*models.Insurance, len(keys))
	for i, k := range keys {
		working[i] = s.records[k].Clone()
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	out := make([]*models.Insurance, len(working))
	for i, rec := range working {
		s.records[rec.Key] = rec
		out[i] = rec.Clone()
	}
	return out, nil
}

func (s *InMemoryStore) ListByFlight(_ context.Context, flight domain.FlightKey) ([]*models.Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byFlight[flight]), nil
}

func (s *InMemoryStore) ListByPassenger(_ context.Context, passenger domain.PrincipalID) ([]*models.Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byPassenger[passenger]), nil
}

// KeysByFlight returns the flight index as stored.
func (s *InMemoryStore) KeysByFlight(_ context.Context, flight domain.FlightKey) ([]domain.InsuranceKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.byFlight[flight]), nil
}

func (s *InMemoryStore) collect(keys []domain.InsuranceKey) []*models.Insurance {
	out := make([]*models.Insurance, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k].Clone())
	}
	return out
}
