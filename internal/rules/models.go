// Package rules loads the externally authored, per-(jurisdiction, product)
// rule packs the decision engine interprets. Packs are data: read-only at
// runtime, versioned out-of-band, validated on load.
package rules

import id "caseflow/pkg/domain"

// Severity classifies an issue a rule raises.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// GroundType distinguishes grounds the court must grant from those it may.
type GroundType string

const (
	GroundMandatory     GroundType = "mandatory"
	GroundDiscretionary GroundType = "discretionary"
)

// Pack is one jurisdiction+product rule set. A pack never applies outside its
// partition; cross-partition leakage produces legally incorrect documents.
type Pack struct {
	Jurisdiction id.Jurisdiction `yaml:"jurisdiction" validate:"required"`
	Product      id.Product      `yaml:"product" validate:"required"`
	Version      string          `yaml:"version" validate:"required"`

	// DefaultRouteOrder is the fixed tie-break order when multiple routes have
	// zero blocking issues and equal warning counts. Documented per
	// jurisdiction, never left to rule-file insertion order.
	DefaultRouteOrder []string `yaml:"default_route_order" validate:"required,min=1,dive,required"`

	Routes  []Route  `yaml:"routes" validate:"required,min=1,dive"`
	Grounds []Ground `yaml:"grounds" validate:"dive"`
	Rules   []Rule   `yaml:"rules" validate:"dive"`
}

// Route is a legal procedure the landlord can pursue (e.g. section 8 vs
// section 21 in England).
type Route struct {
	Code string `yaml:"code" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	// Form is the official form the route renders to (e.g. form_3, form_6a).
	Form string `yaml:"form"`
	// MinNoticeDays is the statutory minimum notice period for the route.
	// Ground-specific minimums override it when a ground is selected.
	MinNoticeDays int `yaml:"min_notice_days" validate:"gte=0"`
	// ExpiryMustAlignToRentPeriod: for periodic tenancies the notice must
	// expire on the last day of a rental period.
	ExpiryMustAlignToRentPeriod bool `yaml:"expiry_must_align_to_rent_period"`
	// ExpiryAfterFixedTerm: the notice cannot expire before the fixed term
	// ends.
	ExpiryAfterFixedTerm bool `yaml:"expiry_after_fixed_term"`
	// MinTenancyMonths bars serving notice before the tenancy is this old
	// (the section 21 four-month bar and its Welsh equivalent).
	MinTenancyMonths int `yaml:"min_tenancy_months" validate:"gte=0"`
}

// Ground is a statutory basis for possession with its applicability predicate.
type Ground struct {
	Code      string     `yaml:"code" validate:"required"`
	Type      GroundType `yaml:"type" validate:"required,oneof=mandatory discretionary"`
	Name      string     `yaml:"name" validate:"required"`
	Rationale string     `yaml:"rationale" validate:"required"`
	Citation  string     `yaml:"citation"`
	// Route the ground belongs to (grounds are route-specific).
	Route         string `yaml:"route" validate:"required"`
	MinNoticeDays int    `yaml:"min_notice_days" validate:"gte=0"`
	// Requires lists activation paths (e.g. "derived.arrears_months") that
	// must be present for the predicate to be evaluable. Missing requirements
	// make the ground not-applicable, never an error.
	Requires []string `yaml:"requires"`
	// When is a CEL expression over the `facts` activation.
	When string `yaml:"when" validate:"required"`
}

// Rule raises a blocking issue, warning, or informational note when its
// predicate holds.
type Rule struct {
	ID       string   `yaml:"id" validate:"required"`
	Severity Severity `yaml:"severity" validate:"required,oneof=blocking warning info"`
	// Route scopes the rule to a single route; empty means the issue applies
	// to every route in the pack.
	Route       string   `yaml:"route"`
	Message     string   `yaml:"message" validate:"required"`
	Citation    string   `yaml:"citation"`
	Fields      []string `yaml:"fields"`
	Remediation string   `yaml:"remediation"`
	// Requires: as on Ground. A rule whose data dependencies are unmet is
	// not applicable - the wizard must not block on questions not yet asked.
	Requires []string `yaml:"requires"`
	When     string   `yaml:"when" validate:"required"`
}

// RouteByCode returns the route definition, if the pack declares it.
func (p *Pack) RouteByCode(code string) (Route, bool) {
	for _, r := range p.Routes {
		if r.Code == code {
			return r, true
		}
	}
	return Route{}, false
}

// GroundByCode returns the ground definition, if the pack declares it.
func (p *Pack) GroundByCode(code string) (Ground, bool) {
	for _, g := range p.Grounds {
		if g.Code == code {
			return g, true
		}
	}
	return Ground{}, false
}
