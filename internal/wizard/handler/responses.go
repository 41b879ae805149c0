package handler

import (
	"time"

	"caseflow/internal/audit"
	"caseflow/internal/decision"
	"caseflow/internal/notice"
	"caseflow/internal/wizard"
)

// CreateCaseResponse returns the new case and the bearer token scoping all
// further case routes.
type CreateCaseResponse struct {
	Case  *wizard.Case `json:"case"`
	Token string       `json:"token"`
}

// FactsResponse returns the current fact dictionary with its version for
// If-Match concurrency.
type FactsResponse struct {
	Facts   map[string]any `json:"facts"`
	Version int64          `json:"version"`
}

// GenerateResponse is the generation handoff. Facts is the normalized
// activation rendering, so the document renderer consumes the same view of
// the case the rules were evaluated against.
type GenerateResponse struct {
	Case     *wizard.Case     `json:"case"`
	Decision *decision.Output `json:"decision"`
	Facts    map[string]any   `json:"facts"`
	Notice   *notice.Result   `json:"notice,omitempty"`
	Version  int64            `json:"version"`
}

// PreviewResponse wraps the full decision output for the review screen.
type PreviewResponse struct {
	Decision *decision.Output `json:"decision"`
	Version  int64            `json:"version"`
}

// EventView is the wire shape of one audit trail entry.
type EventView struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// EventsResponse lists the case audit trail in append order.
type EventsResponse struct {
	Events []EventView `json:"events"`
}

func toEventViews(events []audit.Event) []EventView {
	views := make([]EventView, len(events))
	for i, e := range events {
		views[i] = EventView{
			Timestamp: e.Timestamp,
			Action:    string(e.Action),
			Detail:    e.Detail,
			RequestID: e.RequestID,
		}
	}
	return views
}
