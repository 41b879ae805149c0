package facts

import (
	"context"
	"sync"

	id "caseflow/pkg/domain"
	"caseflow/pkg/platform/sentinel"
	"caseflow/pkg/requestcontext"
)

// InMemoryStore keeps fact-sets in process memory. It favors clarity over
// performance and backs unit tests and single-node development.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[id.CaseID]Snapshot
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[id.CaseID]Snapshot)}
}

func (s *InMemoryStore) Init(ctx context.Context, caseID id.CaseID) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[caseID]; ok {
		return Snapshot{}, sentinel.ErrConflict
	}
	snap := Snapshot{
		CaseID:    caseID,
		Facts:     WizardFacts{},
		Version:   0,
		UpdatedAt: requestcontext.Now(ctx),
	}
	s.snapshots[caseID] = snap
	return snap.withClonedFacts(), nil
}

func (s *InMemoryStore) Get(_ context.Context, caseID id.CaseID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[caseID]
	if !ok {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return snap.withClonedFacts(), nil
}

func (s *InMemoryStore) Merge(ctx context.Context, caseID id.CaseID, partial WizardFacts, expectedVersion *int64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[caseID]
	if !ok {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if expectedVersion != nil && *expectedVersion != snap.Version {
		return Snapshot{}, sentinel.ErrConflict
	}
	next := Snapshot{
		CaseID:    caseID,
		Facts:     merge(snap.Facts, partial),
		Version:   snap.Version + 1,
		UpdatedAt: requestcontext.Now(ctx),
	}
	s.snapshots[caseID] = next
	return next.withClonedFacts(), nil
}

func (s *InMemoryStore) Version(_ context.Context, caseID id.CaseID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[caseID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return snap.Version, nil
}

func (s Snapshot) withClonedFacts() Snapshot {
	s.Facts = s.Facts.Clone()
	return s
}
