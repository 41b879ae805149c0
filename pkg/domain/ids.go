package domain

import (
	"github.com/google/uuid"

	dErrors "caseflow/pkg/domain-errors"
)

// CaseID identifies a wizard case. Typed UUIDs keep identifiers from being
// swapped across aggregates at compile time.
type CaseID uuid.UUID

// ParseCaseID validates and returns a CaseID.
// Invariant: IDs must be valid, non-nil UUIDs. Construct via ParseCaseID at
// trust boundaries; direct casting bypasses validation.
func ParseCaseID(s string) (CaseID, error) {
	if s == "" {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case id must not be nil")
	}
	return CaseID(parsed), nil
}

// NewCaseID returns a fresh random CaseID.
func NewCaseID() CaseID {
	return CaseID(uuid.New())
}

func (id CaseID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero UUID.
func (id CaseID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}
