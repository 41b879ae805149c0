package audit

import (
	"context"
	"sync"

	id "caseflow/pkg/domain"
)

// InMemoryStore keeps the trail in process memory for tests and single-node
// development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CaseID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CaseID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CaseID] = append(s.events[event.CaseID], event)
	return nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events[caseID]))
	copy(events, s.events[caseID])
	return events, nil
}
