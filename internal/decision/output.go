// Package decision evaluates a rule pack against normalized case facts and
// produces the structured recommendation the wizard gate, document preview,
// and notice evaluator all consume. One evaluation path: gating and
// generation can never disagree.
package decision

import (
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
)

// Issue is one problem a rule raised. Code is stable across releases: the UI
// and downstream document generation key off it.
type Issue struct {
	Code        string         `json:"code"`
	Severity    rules.Severity `json:"severity"`
	Message     string         `json:"message"`
	Route       string         `json:"route,omitempty"`
	Fields      []string       `json:"fields,omitempty"`
	Citation    string         `json:"citation,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
}

// RecommendedGround is a statutory ground the facts support, with the
// plain-language rationale and citation the downstream renderer needs so it
// never re-derives legal conclusions.
type RecommendedGround struct {
	Code      string           `json:"code"`
	Type      rules.GroundType `json:"type"`
	Name      string           `json:"name"`
	Route     string           `json:"route"`
	Rationale string           `json:"rationale"`
	Citation  string           `json:"citation,omitempty"`
}

// RecommendedRoute is a route with no blocking issues, carrying the form it
// renders to and the warning count its position was ranked by.
type RecommendedRoute struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Form     string `json:"form,omitempty"`
	Warnings int    `json:"warnings"`
}

// Diagnostic records a rule whose predicate failed to compile or evaluate.
// Failures are isolated per rule and surfaced here instead of aborting the
// evaluation.
type Diagnostic struct {
	RuleID string `json:"rule_id"`
	Error  string `json:"error"`
}

// Output is the full result of evaluating one (jurisdiction, product)
// partition against one set of case facts. For fixed facts it is
// deterministic: same input, same output, byte for byte.
type Output struct {
	Jurisdiction id.Jurisdiction `json:"jurisdiction"`
	Product      id.Product      `json:"product"`
	PackVersion  string          `json:"pack_version"`

	RecommendedRoutes  []RecommendedRoute  `json:"recommended_routes"`
	RecommendedGrounds []RecommendedGround `json:"recommended_grounds"`
	Blocking           []Issue             `json:"blocking_issues"`
	Warnings           []Issue             `json:"warnings"`
	Notes              []Issue             `json:"notes,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// OK reports whether the wizard may advance: no blocking issues anywhere.
func (o *Output) OK() bool {
	return len(o.Blocking) == 0
}

// BestRoute returns the code of the top-ranked route, or "" when every route
// is blocked.
func (o *Output) BestRoute() string {
	if len(o.RecommendedRoutes) == 0 {
		return ""
	}
	return o.RecommendedRoutes[0].Code
}
