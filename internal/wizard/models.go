// Package wizard owns the case aggregate and orchestrates the answer-merge,
// gate, preview, and generation flows. Every flow evaluates through the one
// shared decision path: the gate and the generator can never disagree about
// what blocks a case.
package wizard

import (
	"time"

	id "caseflow/pkg/domain"
)

// Status tracks a case through its lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaid       Status = "paid"
	StatusFulfilled  Status = "fulfilled"
	StatusFailed     Status = "failed"
)

// Case is the wizard case record. Facts live in the fact store; the case
// carries partition, lifecycle, and the advisory cached recommendation.
type Case struct {
	ID           id.CaseID       `json:"id"`
	Jurisdiction id.Jurisdiction `json:"jurisdiction"`
	Product      id.Product      `json:"product"`
	Status       Status          `json:"status"`

	// RecommendedRoute is the route the last successful evaluation ranked
	// first. Advisory only: every gate, preview, and generation call
	// re-evaluates from current facts.
	RecommendedRoute string `json:"recommended_route,omitempty"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CanEdit reports whether fact merges are accepted. Paid cases stay editable
// for a bounded window after payment; fulfilled and failed cases are frozen.
func (c *Case) CanEdit(now time.Time, paidWindow time.Duration) bool {
	switch c.Status {
	case StatusDraft, StatusInProgress, StatusCompleted:
		return true
	case StatusPaid:
		return c.PaidAt != nil && now.Before(c.PaidAt.Add(paidWindow))
	}
	return false
}
