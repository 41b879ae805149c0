package facts

import (
	"context"

	id "caseflow/pkg/domain"
)

// Store persists per-case fact snapshots.
//
// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and Postgres persistence without rewiring business code.
// Implementations return pkg/platform/sentinel errors; services translate.
type Store interface {
	// Init creates an empty fact-set at version 0. Returns sentinel.ErrConflict
	// if the case already has facts.
	Init(ctx context.Context, caseID id.CaseID) (Snapshot, error)

	// Get returns the current snapshot. Returns sentinel.ErrNotFound if the
	// case has no fact-set.
	Get(ctx context.Context, caseID id.CaseID) (Snapshot, error)

	// Merge deep-merges partial onto the stored facts and bumps the version.
	// Unspecified keys are never deleted. If expectedVersion is non-nil and
	// does not match the stored version, Merge fails with sentinel.ErrConflict
	// and the store is left unchanged.
	Merge(ctx context.Context, caseID id.CaseID, partial WizardFacts, expectedVersion *int64) (Snapshot, error)

	// Version returns the current version counter for the case.
	Version(ctx context.Context, caseID id.CaseID) (int64, error)
}
