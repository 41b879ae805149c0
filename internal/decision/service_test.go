package decision

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"caseflow/internal/casefacts"
	"caseflow/internal/facts"
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
)

func newTestService(t *testing.T, loader PackLoader) *Service {
	t.Helper()
	evaluator, err := rules.NewPredicateEvaluator()
	if err != nil {
		t.Fatalf("create evaluator: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(loader, evaluator, logger, nil)
}

func normalize(t *testing.T, wf facts.WizardFacts) casefacts.CaseFacts {
	t.Helper()
	return casefacts.Normalize(wf).Facts
}

// fakeLoader serves a fixed pack regardless of partition. Used for rule
// isolation scenarios the shipped packs cannot trigger.
type fakeLoader struct{ pack *rules.Pack }

func (f *fakeLoader) Load(id.Jurisdiction, id.Product) (*rules.Pack, error) {
	return f.pack, nil
}

func TestGround8ThresholdBlocksBelowTwoMonths(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"rent_amount":      1000.0,
		"rent_period":      "monthly",
		"arrears_amount":   1500.0,
		"section8_grounds": []any{"8"},
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	issue, ok := findIssue(out.Blocking, "GROUND_8_THRESHOLD_NOT_MET")
	if !ok {
		t.Fatalf("expected GROUND_8_THRESHOLD_NOT_MET at 1.5 months arrears, got %v", out.Blocking)
	}
	if issue.Route != "section8" {
		t.Fatalf("expected issue scoped to section8, got %q", issue.Route)
	}
	if ground, ok := findGround(out.RecommendedGrounds, "8"); ok {
		t.Fatalf("ground 8 must not be recommended below threshold, got %+v", ground)
	}
}

func TestGround8AppliesAboveTwoMonths(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"rent_amount":      1000.0,
		"rent_period":      "monthly",
		"arrears_amount":   2100.0,
		"section8_grounds": []any{"8"},
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if _, ok := findIssue(out.Blocking, "GROUND_8_THRESHOLD_NOT_MET"); ok {
		t.Fatal("threshold rule fired at 2.1 months arrears")
	}
	ground, ok := findGround(out.RecommendedGrounds, "8")
	if !ok {
		t.Fatalf("expected ground 8 recommended, got %v", out.RecommendedGrounds)
	}
	if ground.Type != rules.GroundMandatory {
		t.Fatalf("ground 8 should be mandatory, got %s", ground.Type)
	}
	// 2.1 months is inside the borderline band.
	if _, ok := findIssue(out.Warnings, "GROUND_8_BORDERLINE"); !ok {
		t.Fatalf("expected borderline warning at 2.1 months, got %v", out.Warnings)
	}
}

func TestGround8WeeklyRentEquivalence(t *testing.T) {
	// £500/week is £2166.67/month; £4500 arrears is ~2.08 months. The
	// threshold must be assessed on the monthly equivalent, not the raw
	// figures.
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"rent_amount":      500.0,
		"rent_period":      "weekly",
		"arrears_amount":   4500.0,
		"section8_grounds": []any{"8"},
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(out.Blocking, "GROUND_8_THRESHOLD_NOT_MET"); ok {
		t.Fatal("threshold rule fired despite arrears exceeding two months of the monthly equivalent")
	}
	if _, ok := findGround(out.RecommendedGrounds, "8"); !ok {
		t.Fatal("expected ground 8 recommended for weekly rent over threshold")
	}
}

func TestGround8DataMissingWhenUnderivable(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"section8_grounds": []any{"8"},
		"arrears_amount":   2100.0,
		// No rent amount or period: arrears in months cannot be derived.
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(out.Blocking, "GROUND_8_DATA_MISSING"); !ok {
		t.Fatalf("expected GROUND_8_DATA_MISSING, got %v", out.Blocking)
	}
	if _, ok := findIssue(out.Blocking, "GROUND_8_THRESHOLD_NOT_MET"); ok {
		t.Fatal("threshold rule must be skipped when its requirements are unmet")
	}
}

func TestScotlandLandlordSellingGround(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"landlord_selling": true,
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionScotland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	ground, ok := findGround(out.RecommendedGrounds, "landlord_intends_to_sell")
	if !ok {
		t.Fatalf("expected landlord_intends_to_sell recommended, got %v", out.RecommendedGrounds)
	}
	if ground.Type != rules.GroundDiscretionary {
		t.Fatalf("expected a discretionary ground, got %s", ground.Type)
	}
	if ground.Route != "notice_to_leave" {
		t.Fatalf("expected notice_to_leave route, got %q", ground.Route)
	}
}

func TestDepositFalseBlocksSection21NotSection8(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"deposit_protected": false,
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	issue, ok := findIssue(out.Blocking, "DEPOSIT_NOT_PROTECTED")
	if !ok {
		t.Fatalf("explicit false must trigger the deposit rule, got %v", out.Blocking)
	}
	if issue.Route != "section21" {
		t.Fatalf("deposit rule should be scoped to section21, got %q", issue.Route)
	}

	// Section 21 is blocked, section 8 survives.
	for _, r := range out.RecommendedRoutes {
		if r.Code == "section21" {
			t.Fatal("section21 recommended despite a blocking issue")
		}
	}
	if out.BestRoute() != "section8" {
		t.Fatalf("expected section8 recommended, got %q", out.BestRoute())
	}
}

func TestDepositAbsentDoesNotTriggerDepositRule(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(out.Blocking, "DEPOSIT_NOT_PROTECTED"); ok {
		t.Fatal("unanswered deposit question must not fire the explicit-false rule")
	}
}

func TestUnansweredComplianceBlocksSection21(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	// Gas, EPC and licensing questions never answered. Silence is not
	// compliance: section21 must be withheld until they are.
	cf := normalize(t, facts.WizardFacts{
		"notice_service_date": "2024-12-01",
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	for _, code := range []string{
		"GAS_CERTIFICATE_STATUS_UNKNOWN",
		"EPC_STATUS_UNKNOWN",
		"LICENSING_STATUS_UNKNOWN",
	} {
		issue, ok := findIssue(out.Blocking, code)
		if !ok {
			t.Fatalf("expected %s blocking, got %v", code, out.Blocking)
		}
		if issue.Route != "section21" {
			t.Fatalf("%s should be scoped to section21, got %q", code, issue.Route)
		}
	}
	if _, ok := findIssue(out.Warnings, "HOW_TO_RENT_STATUS_UNKNOWN"); !ok {
		t.Fatalf("expected how-to-rent unknown warning, got %v", out.Warnings)
	}

	for _, r := range out.RecommendedRoutes {
		if r.Code == "section21" {
			t.Fatal("section21 recommended with compliance questions unanswered")
		}
	}
	if out.BestRoute() != "section8" {
		t.Fatalf("expected section8 recommended, got %q", out.BestRoute())
	}
}

func TestUnansweredComplianceClearsWhenAnswered(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"deposit_protected":        true,
		"gas_certificate_provided": true,
		"epc_provided":             true,
		"how_to_rent_provided":     true,
		"licensing_required":       false,
		"notice_service_date":      "2024-12-01",
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(out.Blocking) != 0 {
		t.Fatalf("answered compliance gates must not block, got %v", out.Blocking)
	}
	found := false
	for _, r := range out.RecommendedRoutes {
		if r.Code == "section21" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected section21 recommended, got %v", out.RecommendedRoutes)
	}
}

func TestJurisdictionIsolationSharedRuleID(t *testing.T) {
	// DEPOSIT_NOT_PROTECTED exists in both the England and Wales packs with
	// different citations. Each evaluation must surface only its own
	// partition's version.
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{"deposit_protected": false})

	england, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate england: %v", err)
	}
	wales, err := svc.Evaluate(context.Background(), cf, id.JurisdictionWales, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate wales: %v", err)
	}

	eIssue, ok := findIssue(england.Blocking, "DEPOSIT_NOT_PROTECTED")
	if !ok {
		t.Fatal("england evaluation missing deposit rule")
	}
	wIssue, ok := findIssue(wales.Blocking, "DEPOSIT_NOT_PROTECTED")
	if !ok {
		t.Fatal("wales evaluation missing deposit rule")
	}

	if eIssue.Citation != "Housing Act 2004, s.213; Housing Act 1988, s.21" {
		t.Fatalf("england citation leaked: %q", eIssue.Citation)
	}
	if wIssue.Citation != "Renting Homes (Wales) Act 2016, s.45" {
		t.Fatalf("wales citation leaked: %q", wIssue.Citation)
	}
	if eIssue.Route != "section21" || wIssue.Route != "section173" {
		t.Fatalf("route scoping crossed jurisdictions: %q / %q", eIssue.Route, wIssue.Route)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"rent_amount":       1000.0,
		"rent_period":       "monthly",
		"arrears_amount":    2500.0,
		"section8_grounds":  []any{"8", "10"},
		"deposit_protected": false,
		"epc_provided":      false,
	})

	first, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for range 5 {
		next, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatal("repeated evaluation of identical facts diverged")
		}
	}
}

func TestUnscopedBlockingIssueBlocksAllRoutes(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{"notice_service_method": "other"})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := findIssue(out.Blocking, "NOTICE_SERVICE_METHOD_UNSUPPORTED"); !ok {
		t.Fatalf("expected service method rule, got %v", out.Blocking)
	}
	if len(out.RecommendedRoutes) != 0 {
		t.Fatalf("unscoped blocking issue must leave no recommended routes, got %v", out.RecommendedRoutes)
	}
	if out.BestRoute() != "" {
		t.Fatalf("expected no best route, got %q", out.BestRoute())
	}
}

func TestRouteRankingByWarningCount(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	// how_to_rent false raises a section21-scoped warning; section8 stays
	// clean and must outrank it despite the default order. The other
	// compliance gates are answered so only the warning separates the routes.
	cf := normalize(t, facts.WizardFacts{
		"how_to_rent_provided":     false,
		"deposit_protected":        true,
		"gas_certificate_provided": true,
		"epc_provided":             true,
		"licensing_required":       false,
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(out.RecommendedRoutes) != 2 {
		t.Fatalf("expected both routes recommended, got %v", out.RecommendedRoutes)
	}
	if out.RecommendedRoutes[0].Code != "section8" || out.RecommendedRoutes[0].Warnings != 0 {
		t.Fatalf("expected clean section8 first, got %+v", out.RecommendedRoutes[0])
	}
	if out.RecommendedRoutes[1].Code != "section21" || out.RecommendedRoutes[1].Warnings != 1 {
		t.Fatalf("expected section21 with one warning second, got %+v", out.RecommendedRoutes[1])
	}
}

func TestRouteTieBreakUsesDefaultOrder(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))
	cf := normalize(t, facts.WizardFacts{
		"deposit_protected":        true,
		"gas_certificate_provided": true,
		"epc_provided":             true,
		"how_to_rent_provided":     true,
		"licensing_required":       false,
	})

	out, err := svc.Evaluate(context.Background(), cf, id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// No warnings anywhere: the pack's documented order decides.
	want := []string{"section8", "section21"}
	got := make([]string, len(out.RecommendedRoutes))
	for i, r := range out.RecommendedRoutes {
		got[i] = r.Code
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected default order %v, got %v", want, got)
	}
}

func TestMalformedPredicateIsolatedIntoDiagnostics(t *testing.T) {
	pack := &rules.Pack{
		Jurisdiction:      id.JurisdictionEngland,
		Product:           id.ProductNoticeOnly,
		Version:           "test",
		DefaultRouteOrder: []string{"section8"},
		Routes: []rules.Route{
			{Code: "section8", Name: "Section 8 notice", Form: "form_3", MinNoticeDays: 14},
		},
		Rules: []rules.Rule{
			{ID: "BROKEN_RULE", Severity: rules.SeverityBlocking, Message: "broken", When: "facts.nonsense >="},
			{ID: "WORKING_RULE", Severity: rules.SeverityWarning, Message: "fires", When: "true"},
		},
	}
	svc := newTestService(t, &fakeLoader{pack: pack})

	out, err := svc.Evaluate(context.Background(), normalize(t, facts.WizardFacts{}), id.JurisdictionEngland, id.ProductNoticeOnly)
	if err != nil {
		t.Fatalf("evaluate must not fail on a malformed rule: %v", err)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].RuleID != "BROKEN_RULE" {
		t.Fatalf("expected a diagnostic for BROKEN_RULE, got %v", out.Diagnostics)
	}
	if _, ok := findIssue(out.Warnings, "WORKING_RULE"); !ok {
		t.Fatal("rules after a malformed one must still run")
	}
	if len(out.Blocking) != 0 {
		t.Fatalf("a malformed blocking rule must not block, got %v", out.Blocking)
	}
}

func TestMissingPackPropagates(t *testing.T) {
	svc := newTestService(t, rules.NewLoader(""))

	_, err := svc.Evaluate(context.Background(), normalize(t, facts.WizardFacts{}), id.JurisdictionScotland, id.ProductMoneyClaim)
	if err == nil {
		t.Fatal("expected an error for a partition with no pack")
	}
}

func findIssue(issues []Issue, code string) (Issue, bool) {
	for _, i := range issues {
		if i.Code == code {
			return i, true
		}
	}
	return Issue{}, false
}

func findGround(grounds []RecommendedGround, code string) (RecommendedGround, bool) {
	for _, g := range grounds {
		if g.Code == code {
			return g, true
		}
	}
	return RecommendedGround{}, false
}
