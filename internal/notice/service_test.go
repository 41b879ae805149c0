package notice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"caseflow/internal/casefacts"
	"caseflow/internal/decision"
	"caseflow/internal/facts"
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	evaluator, err := rules.NewPredicateEvaluator()
	if err != nil {
		t.Fatalf("create evaluator: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := rules.NewLoader("")
	decisions := decision.NewService(loader, evaluator, logger, nil)
	return NewService(decisions, loader, logger)
}

func normalize(t *testing.T, wf facts.WizardFacts) casefacts.CaseFacts {
	t.Helper()
	return casefacts.Normalize(wf).Facts
}

// section21CleanFacts answers every section 21 compliance gate so the tests
// below exercise only the date arithmetic.
func section21CleanFacts(extra facts.WizardFacts) facts.WizardFacts {
	wf := facts.WizardFacts{
		"tenancy_start_date":       "2024-01-15",
		"fixed_term_end_date":      "2025-01-14",
		"deposit_protected":        true,
		"prescribed_info_given":    true,
		"gas_certificate_provided": true,
		"epc_provided":             true,
		"how_to_rent_provided":     true,
		"licensing_required":       false,
	}
	for k, v := range extra {
		wf[k] = v
	}
	return wf
}

func TestEvaluateComputesExpiryFloor(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date": "2024-12-01",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected no hard failures, got %v", result.HardFailures)
	}
	if result.Form != FormSection6A {
		t.Fatalf("expected form_6a, got %q", result.Form)
	}

	// Service + 56 days passes the fixed-term end, so it is the floor.
	want := day(2025, time.January, 26)
	if result.Computed.MinimumExpiryDate == nil || !result.Computed.MinimumExpiryDate.Equal(want) {
		t.Fatalf("expected floor %s, got %v", want.Format(time.DateOnly), result.Computed.MinimumExpiryDate)
	}
	// No user expiry: the floor doubles as the suggested expiry.
	if result.Computed.ExpiryDate == nil || !result.Computed.ExpiryDate.Equal(want) {
		t.Fatalf("expected suggested expiry %s, got %v", want.Format(time.DateOnly), result.Computed.ExpiryDate)
	}
	// Form 6A: proceedings within 6 months of the service date.
	deadline := day(2025, time.June, 1)
	if result.Computed.ProceedingsDeadline == nil || !result.Computed.ProceedingsDeadline.Equal(deadline) {
		t.Fatalf("expected proceedings deadline %s, got %v", deadline.Format(time.DateOnly), result.Computed.ProceedingsDeadline)
	}
}

func TestEvaluateFixedTermRaisesFloor(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date": "2024-10-01",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := day(2025, time.January, 14)
	if result.Computed.MinimumExpiryDate == nil || !result.Computed.MinimumExpiryDate.Equal(want) {
		t.Fatalf("expected fixed-term end as floor, got %v", result.Computed.MinimumExpiryDate)
	}
}

func TestEvaluateUserExpiryBelowFloorBlocks(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date": "2024-12-01",
		"notice_expiry_date":  "2025-01-10",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(result.HardFailures, "NOTICE_EXPIRY_BEFORE_MINIMUM"); !ok {
		t.Fatalf("expected NOTICE_EXPIRY_BEFORE_MINIMUM, got %v", result.HardFailures)
	}
	// An invalid user date is reported, never silently overwritten.
	if result.Computed.ExpiryDate != nil {
		t.Fatalf("expiry must not be set when the user's date is invalid, got %v", result.Computed.ExpiryDate)
	}
	if result.Computed.MinimumExpiryDate == nil {
		t.Fatal("floor should still be reported alongside the failure")
	}
}

func TestEvaluateUserExpiryAboveFloorKept(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date": "2024-12-01",
		"notice_expiry_date":  "2025-03-01",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected no hard failures, got %v", result.HardFailures)
	}
	want := day(2025, time.March, 1)
	if result.Computed.ExpiryDate == nil || !result.Computed.ExpiryDate.Equal(want) {
		t.Fatalf("expected the user's own expiry kept, got %v", result.Computed.ExpiryDate)
	}
}

func TestEvaluateServedTooEarly(t *testing.T) {
	svc := newTestService(t)
	// Section 21 carries a four-month service bar from tenancy start.
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date": "2024-03-01",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(result.HardFailures, "NOTICE_SERVED_TOO_EARLY"); !ok {
		t.Fatalf("expected NOTICE_SERVED_TOO_EARLY, got %v", result.HardFailures)
	}
	want := day(2024, time.May, 15)
	if result.Computed.EarliestServiceDate == nil || !result.Computed.EarliestServiceDate.Equal(want) {
		t.Fatalf("expected earliest service date %s, got %v", want.Format(time.DateOnly), result.Computed.EarliestServiceDate)
	}
}

func TestEvaluateServiceDateMissing(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(nil))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(result.HardFailures, "NOTICE_SERVICE_DATE_MISSING"); !ok {
		t.Fatalf("expected NOTICE_SERVICE_DATE_MISSING, got %v", result.HardFailures)
	}
	if result.Computed.MinimumExpiryDate != nil {
		t.Fatal("no floor can be computed without a service date")
	}
}

func TestEvaluateNorthernIrelandAlignment(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, facts.WizardFacts{
		"tenancy_start_date":  "2024-01-15",
		"rent_period":         "monthly",
		"notice_service_date": "2024-06-01",
		// 28 days from service is 2024-06-29, inside the period ending
		// 2024-07-14, but the chosen date is mid-period.
		"notice_expiry_date": "2024-07-20",
	})

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionNorthernIreland, id.ProductNoticeOnly, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Route != "notice_to_quit" {
		t.Fatalf("expected notice_to_quit, got %q", result.Route)
	}

	issue, ok := findIssue(result.HardFailures, "NOTICE_EXPIRY_NOT_ALIGNED")
	if !ok {
		t.Fatalf("expected NOTICE_EXPIRY_NOT_ALIGNED, got %v", result.HardFailures)
	}
	// The remediation names the next period end after the chosen date.
	if issue.Remediation != "The next rental period ends on 2024-08-14." {
		t.Fatalf("unexpected remediation: %q", issue.Remediation)
	}

	// The floor itself is rolled to a period end: service+28 is 2024-06-29,
	// aligned forward to 2024-07-14.
	want := day(2024, time.July, 14)
	if result.Computed.MinimumExpiryDate == nil || !result.Computed.MinimumExpiryDate.Equal(want) {
		t.Fatalf("expected aligned floor %s, got %v", want.Format(time.DateOnly), result.Computed.MinimumExpiryDate)
	}
}

func TestEvaluateNorthernIrelandAlignedDateAccepted(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, facts.WizardFacts{
		"tenancy_start_date":  "2024-01-15",
		"rent_period":         "monthly",
		"notice_service_date": "2024-06-01",
		"notice_expiry_date":  "2024-07-14",
	})

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionNorthernIreland, id.ProductNoticeOnly, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected aligned expiry accepted, got %v", result.HardFailures)
	}
}

func TestEvaluateGroundLengthensNoticePeriod(t *testing.T) {
	svc := newTestService(t)
	// Scotland: landlord_intends_to_sell carries an 84-day minimum against
	// the route's 28-day baseline.
	cf := normalize(t, facts.WizardFacts{
		"section8_grounds":    "landlord_intends_to_sell",
		"notice_service_date": "2024-06-01",
	})

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionScotland, id.ProductNoticeOnly, "notice_to_leave")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := day(2024, time.August, 24)
	if result.Computed.MinimumExpiryDate == nil || !result.Computed.MinimumExpiryDate.Equal(want) {
		t.Fatalf("expected 84-day floor %s, got %v", want.Format(time.DateOnly), result.Computed.MinimumExpiryDate)
	}
}

func TestEvaluatePrescribedInfoLate(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date":   "2024-12-01",
		"deposit_received_date": "2024-01-20",
		"prescribed_info_date":  "2024-03-15",
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	issue, ok := findIssue(result.HardFailures, "PRESCRIBED_INFO_LATE")
	if !ok {
		t.Fatalf("expected PRESCRIBED_INFO_LATE, got %v", result.HardFailures)
	}
	if issue.Citation != "Housing Act 2004, s.213(6)" {
		t.Fatalf("expected statutory citation for england, got %q", issue.Citation)
	}
}

func TestEvaluatePrescribedInfoWithinWindow(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, section21CleanFacts(facts.WizardFacts{
		"notice_service_date":   "2024-12-01",
		"deposit_received_date": "2024-01-20",
		"prescribed_info_date":  "2024-02-19", // exactly 30 days after
	}))

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(result.HardFailures, "PRESCRIBED_INFO_LATE"); ok {
		t.Fatal("day 30 is inside the statutory window")
	}
}

func TestEvaluateDefaultsToBestRoute(t *testing.T) {
	svc := newTestService(t)
	// Deposit unprotected blocks section21, so the best route is section8.
	cf := normalize(t, facts.WizardFacts{
		"deposit_protected":   false,
		"notice_service_date": "2024-12-01",
	})

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Route != "section8" {
		t.Fatalf("expected best route section8, got %q", result.Route)
	}
	if _, ok := findIssue(result.HardFailures, "DEPOSIT_NOT_PROTECTED"); ok {
		t.Fatal("section21-scoped issue leaked into a section8 result")
	}
}

func TestEvaluateExplicitRouteKeepsScopedFailures(t *testing.T) {
	svc := newTestService(t)
	cf := normalize(t, facts.WizardFacts{
		"deposit_protected":   false,
		"notice_service_date": "2024-12-01",
	})

	result, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly, "section21")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(result.HardFailures, "DEPOSIT_NOT_PROTECTED"); !ok {
		t.Fatalf("expected the section21 deposit failure, got %v", result.HardFailures)
	}
}

func TestEvaluateUnknownRouteRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Evaluate(context.Background(), normalize(t, nil), id.JurisdictionEngland, id.ProductNoticeOnly, "section95")
	if !dErrors.Is(err, dErrors.CodeInvalidInput) {
		t.Fatalf("expected invalid_input for unknown route, got %v", err)
	}
}

func findIssue(issues []decision.Issue, code string) (decision.Issue, bool) {
	for _, i := range issues {
		if i.Code == code {
			return i, true
		}
	}
	return decision.Issue{}, false
}
