package wizard

import (
	"context"
	"sync"

	id "caseflow/pkg/domain"
	"caseflow/pkg/platform/sentinel"
)

// InMemoryStore keeps case records in process memory for unit tests and
// single-node development.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[id.CaseID]Case
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cases: make(map[id.CaseID]Case)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.cases[c.ID] = *c
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, caseID id.CaseID) (*Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.cases[c.ID] = *c
	return nil
}
