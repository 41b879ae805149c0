package notice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"caseflow/internal/casefacts"
	"caseflow/internal/decision"
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
)

// Computed carries the dates the evaluator derived. Pointers: nil means the
// inputs needed to compute the date were not yet supplied.
type Computed struct {
	// MinimumExpiryDate is the statutory floor for the notice expiry.
	MinimumExpiryDate *time.Time `json:"minimum_expiry_date,omitempty"`
	// ExpiryDate is the date the notice should carry: the user's own date
	// when one was supplied and valid, otherwise the computed floor. Never
	// set when the user supplied an invalid date - the floor is a floor,
	// not an override.
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	// EarliestServiceDate is the first day notice may lawfully be served,
	// where the route bars service early in the tenancy.
	EarliestServiceDate *time.Time `json:"earliest_service_date,omitempty"`
	// ProceedingsDeadline is the last day possession proceedings may begin
	// before the notice lapses.
	ProceedingsDeadline *time.Time `json:"proceedings_deadline,omitempty"`
}

// Result is the notice compliance verdict for one route.
type Result struct {
	Route        string           `json:"route"`
	Form         string           `json:"form,omitempty"`
	HardFailures []decision.Issue `json:"hard_failures"`
	Warnings     []decision.Issue `json:"warnings"`
	Computed     Computed         `json:"computed"`
}

// OK reports whether the notice may be generated.
func (r *Result) OK() bool {
	return len(r.HardFailures) == 0
}

// Service evaluates notice compliance. Rule-shaped gates run through the
// shared decision evaluation; this service adds only the statutory date
// arithmetic rule predicates cannot express.
type Service struct {
	decisions *decision.Service
	loader    decision.PackLoader
	logger    *slog.Logger
}

func NewService(decisions *decision.Service, loader decision.PackLoader, logger *slog.Logger) *Service {
	return &Service{
		decisions: decisions,
		loader:    loader,
		logger:    logger,
	}
}

// Evaluate runs the shared decision evaluation and layers the date gates on
// top. routeCode selects the route to evaluate the notice for; empty means
// the top recommended route. A case whose every route is blocked gets the
// blocking issues back against the requested route with no date computation.
func (s *Service) Evaluate(ctx context.Context, cf casefacts.CaseFacts, jurisdiction id.Jurisdiction, product id.Product, routeCode string) (*Result, error) {
	out, err := s.decisions.Evaluate(ctx, cf, jurisdiction, product)
	if err != nil {
		return nil, err
	}

	pack, err := s.loader.Load(jurisdiction, product)
	if err != nil {
		return nil, err
	}

	if routeCode == "" {
		routeCode = out.BestRoute()
		if routeCode == "" && len(pack.Routes) > 0 {
			// Every route is blocked; report against the pack's preferred
			// route so the failures have a home.
			routeCode = pack.DefaultRouteOrder[0]
		}
	}
	route, ok := pack.RouteByCode(routeCode)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown route %q for %s/%s", routeCode, jurisdiction, product)
	}

	result := &Result{
		Route:        route.Code,
		Form:         route.Form,
		HardFailures: issuesForRoute(out.Blocking, route.Code),
		Warnings:     issuesForRoute(out.Warnings, route.Code),
	}

	s.evaluateDates(result, route, selectedGrounds(pack, cf), cf)
	s.evaluatePrescribedInfo(result, cf, jurisdiction)

	return result, nil
}

// evaluateDates applies the service-timing bar, computes the expiry floor,
// and validates any user-supplied expiry against it.
func (s *Service) evaluateDates(result *Result, route rules.Route, grounds []rules.Ground, cf casefacts.CaseFacts) {
	if route.MinTenancyMonths > 0 && cf.Tenancy.StartDate.Present {
		earliest := cf.Tenancy.StartDate.Value.AddDate(0, route.MinTenancyMonths, 0)
		result.Computed.EarliestServiceDate = &earliest
	}

	if !cf.Notice.ServiceDate.Present {
		result.HardFailures = append(result.HardFailures, decision.Issue{
			Code:        "NOTICE_SERVICE_DATE_MISSING",
			Severity:    rules.SeverityBlocking,
			Message:     "The date the notice will be served is needed to compute its expiry date.",
			Route:       route.Code,
			Fields:      []string{"notice_service_date"},
			Remediation: "Provide the date the notice will be, or was, served.",
		})
		return
	}
	serviceDate := cf.Notice.ServiceDate.Value

	if result.Computed.EarliestServiceDate != nil && serviceDate.Before(*result.Computed.EarliestServiceDate) {
		result.HardFailures = append(result.HardFailures, decision.Issue{
			Code:     "NOTICE_SERVED_TOO_EARLY",
			Severity: rules.SeverityBlocking,
			Message: fmt.Sprintf("Notice on this route cannot be served within the first %d months of the tenancy. The earliest service date is %s.",
				route.MinTenancyMonths, result.Computed.EarliestServiceDate.Format(time.DateOnly)),
			Route:       route.Code,
			Fields:      []string{"notice_service_date"},
			Remediation: "Wait until the minimum tenancy period has passed, or choose a different route.",
		})
	}

	if route.ExpiryMustAlignToRentPeriod && (!cf.Tenancy.StartDate.Present || !cf.Tenancy.RentPeriod.Present) {
		// The pack's own data rules already block on the missing fields;
		// without them the floor cannot be aligned, so stop here.
		return
	}

	floor := minimumExpiry(route, grounds, serviceDate, cf.Tenancy)
	result.Computed.MinimumExpiryDate = &floor

	switch {
	case !cf.Notice.ExpiryDate.Present:
		result.Computed.ExpiryDate = &floor
	case cf.Notice.ExpiryDate.Value.Before(floor):
		result.HardFailures = append(result.HardFailures, decision.Issue{
			Code:     "NOTICE_EXPIRY_BEFORE_MINIMUM",
			Severity: rules.SeverityBlocking,
			Message: fmt.Sprintf("The notice expiry date is earlier than the statutory minimum of %s.",
				floor.Format(time.DateOnly)),
			Route:       route.Code,
			Fields:      []string{"notice_expiry_date"},
			Remediation: fmt.Sprintf("Use an expiry date of %s or later.", floor.Format(time.DateOnly)),
		})
	case route.ExpiryMustAlignToRentPeriod && !alignedToPeriodEnd(cf.Notice.ExpiryDate.Value, cf.Tenancy.StartDate.Value, cf.Tenancy.RentPeriod.Value):
		aligned := alignToPeriodEnd(cf.Notice.ExpiryDate.Value, cf.Tenancy.StartDate.Value, cf.Tenancy.RentPeriod.Value)
		result.HardFailures = append(result.HardFailures, decision.Issue{
			Code:     "NOTICE_EXPIRY_NOT_ALIGNED",
			Severity: rules.SeverityBlocking,
			Message:  "The notice must expire on the last day of a rental period.",
			Route:    route.Code,
			Fields:   []string{"notice_expiry_date"},
			Remediation: fmt.Sprintf("The next rental period ends on %s.",
				aligned.Format(time.DateOnly)),
		})
	default:
		expiry := cf.Notice.ExpiryDate.Value
		result.Computed.ExpiryDate = &expiry
	}

	if months, fromExpiry := proceedingsValidity(route.Form); months > 0 {
		anchor := serviceDate
		if fromExpiry {
			if result.Computed.ExpiryDate == nil {
				return
			}
			anchor = *result.Computed.ExpiryDate
		}
		deadline := anchor.AddDate(0, months, 0)
		result.Computed.ProceedingsDeadline = &deadline
	}
}

// evaluatePrescribedInfo checks the timing leg of the prescribed-information
// duty: giving it at all is a pack rule, giving it late is date arithmetic.
func (s *Service) evaluatePrescribedInfo(result *Result, cf casefacts.CaseFacts, jurisdiction id.Jurisdiction) {
	if !cf.Tenancy.DepositReceivedDate.Present || !cf.Compliance.PrescribedInfoDate.Present {
		return
	}
	deadline := cf.Tenancy.DepositReceivedDate.Value.AddDate(0, 0, prescribedInfoWindowDays)
	if !cf.Compliance.PrescribedInfoDate.Value.After(deadline) {
		return
	}

	issue := decision.Issue{
		Code:     "PRESCRIBED_INFO_LATE",
		Severity: rules.SeverityBlocking,
		Message: fmt.Sprintf("The prescribed information was given more than %d days after the deposit was received.",
			prescribedInfoWindowDays),
		Fields:      []string{"prescribed_info_date", "deposit_received_date"},
		Remediation: "Return the deposit to the tenant before serving a no-fault notice, or take advice on re-serving the prescribed information.",
	}
	if jurisdiction == id.JurisdictionEngland {
		issue.Citation = "Housing Act 2004, s.213(6)"
	}
	result.HardFailures = append(result.HardFailures, issue)
}

// issuesForRoute keeps the issues that apply to the route: unscoped ones plus
// those scoped to it.
func issuesForRoute(issues []decision.Issue, routeCode string) []decision.Issue {
	kept := make([]decision.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Route == "" || issue.Route == routeCode {
			kept = append(kept, issue)
		}
	}
	return kept
}

// selectedGrounds resolves the ground codes the landlord selected to their
// pack definitions. Unknown codes are skipped; the pack's own rules flag
// them.
func selectedGrounds(pack *rules.Pack, cf casefacts.CaseFacts) []rules.Ground {
	if !cf.Issues.Section8Grounds.Present {
		return nil
	}
	grounds := make([]rules.Ground, 0, len(cf.Issues.Section8Grounds.Values))
	for _, code := range cf.Issues.Section8Grounds.Values {
		if g, ok := pack.GroundByCode(code); ok {
			grounds = append(grounds, g)
		}
	}
	return grounds
}
