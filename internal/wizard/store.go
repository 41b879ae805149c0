package wizard

import (
	"context"

	id "caseflow/pkg/domain"
)

// Store persists case records. Implementations return pkg/platform/sentinel
// errors; the service translates.
type Store interface {
	// Create inserts a new case. Returns sentinel.ErrConflict if the ID exists.
	Create(ctx context.Context, c *Case) error

	// Get returns the case. Returns sentinel.ErrNotFound if absent.
	Get(ctx context.Context, caseID id.CaseID) (*Case, error)

	// Update overwrites the mutable case fields. Returns sentinel.ErrNotFound
	// if absent.
	Update(ctx context.Context, c *Case) error
}
