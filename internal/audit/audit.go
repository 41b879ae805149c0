// Package audit keeps an append-only trail of case lifecycle actions. Legal
// document generation needs to show who did what when; the trail is
// best-effort from the caller's perspective but never silently dropped.
package audit

import (
	"context"
	"time"

	id "caseflow/pkg/domain"
)

// Action names a recorded case lifecycle step.
type Action string

const (
	ActionCaseCreated         Action = "case_created"
	ActionFactsMerged         Action = "facts_merged"
	ActionPaymentRecorded     Action = "payment_recorded"
	ActionGenerationCompleted Action = "generation_completed"
	ActionGenerationBlocked   Action = "generation_blocked"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	CaseID    id.CaseID
	Action    Action
	// Detail carries action-specific context (fact version, route, reason).
	Detail    string
	RequestID string
}

// Store is the append-only persistence behind the trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]Event, error)
}
