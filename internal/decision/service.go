package decision

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"caseflow/internal/casefacts"
	"caseflow/internal/decision/metrics"
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
)

// PackLoader resolves a (jurisdiction, product) partition to its rule pack.
type PackLoader interface {
	Load(jurisdiction id.Jurisdiction, product id.Product) (*rules.Pack, error)
}

// Service interprets a rule pack against normalized case facts. Evaluation is
// pure over its inputs: no I/O beyond the pack load, no clock, no randomness,
// so identical facts always produce identical output.
type Service struct {
	loader    PackLoader
	evaluator *rules.PredicateEvaluator
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(loader PackLoader, evaluator *rules.PredicateEvaluator, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		loader:    loader,
		evaluator: evaluator,
		logger:    logger,
		metrics:   m,
	}
}

// Evaluate loads the partition's pack and runs every rule and ground against
// the facts. Rules whose data dependencies (requires) are unmet are skipped as
// not-applicable: the wizard must not block on questions not yet asked. A rule
// whose predicate fails to compile or evaluate is isolated into Diagnostics
// and the rest of the pack still runs.
func (s *Service) Evaluate(ctx context.Context, cf casefacts.CaseFacts, jurisdiction id.Jurisdiction, product id.Product) (*Output, error) {
	start := time.Now()

	pack, err := s.loader.Load(jurisdiction, product)
	if err != nil {
		return nil, err
	}

	activation := cf.Activation()

	out := &Output{
		Jurisdiction:       jurisdiction,
		Product:            product,
		PackVersion:        pack.Version,
		RecommendedRoutes:  []RecommendedRoute{},
		RecommendedGrounds: []RecommendedGround{},
		Blocking:           []Issue{},
		Warnings:           []Issue{},
	}

	// Per-route tallies. Blocking issues with no route scope block every
	// route; route-scoped ones block only their own.
	blockedAll := false
	routeBlocked := make(map[string]bool, len(pack.Routes))
	routeWarnings := make(map[string]int, len(pack.Routes))

	for _, rule := range pack.Rules {
		if !requirementsMet(activation, rule.Requires) {
			continue
		}
		hit, err := s.evaluator.Eval(rule.When, activation)
		if err != nil {
			s.logger.WarnContext(ctx, "rule predicate failed",
				"rule_id", rule.ID,
				"jurisdiction", jurisdiction,
				"product", product,
				"error", err,
			)
			s.metrics.IncrementRuleFailure(jurisdiction.String(), product.String(), rule.ID)
			out.Diagnostics = append(out.Diagnostics, Diagnostic{RuleID: rule.ID, Error: err.Error()})
			continue
		}
		if !hit {
			continue
		}

		issue := Issue{
			Code:        rule.ID,
			Severity:    rule.Severity,
			Message:     rule.Message,
			Route:       rule.Route,
			Fields:      rule.Fields,
			Citation:    rule.Citation,
			Remediation: rule.Remediation,
		}
		switch rule.Severity {
		case rules.SeverityBlocking:
			out.Blocking = append(out.Blocking, issue)
			if rule.Route == "" {
				blockedAll = true
			} else {
				routeBlocked[rule.Route] = true
			}
		case rules.SeverityWarning:
			out.Warnings = append(out.Warnings, issue)
			if rule.Route == "" {
				for _, r := range pack.Routes {
					routeWarnings[r.Code]++
				}
			} else {
				routeWarnings[rule.Route]++
			}
		case rules.SeverityInfo:
			out.Notes = append(out.Notes, issue)
		}
	}

	for _, ground := range pack.Grounds {
		if !requirementsMet(activation, ground.Requires) {
			continue
		}
		hit, err := s.evaluator.Eval(ground.When, activation)
		if err != nil {
			s.logger.WarnContext(ctx, "ground predicate failed",
				"ground", ground.Code,
				"jurisdiction", jurisdiction,
				"product", product,
				"error", err,
			)
			s.metrics.IncrementRuleFailure(jurisdiction.String(), product.String(), "ground:"+ground.Code)
			out.Diagnostics = append(out.Diagnostics, Diagnostic{RuleID: "ground:" + ground.Code, Error: err.Error()})
			continue
		}
		if !hit {
			continue
		}
		out.RecommendedGrounds = append(out.RecommendedGrounds, RecommendedGround{
			Code:      ground.Code,
			Type:      ground.Type,
			Name:      ground.Name,
			Route:     ground.Route,
			Rationale: ground.Rationale,
			Citation:  ground.Citation,
		})
	}

	if !blockedAll {
		out.RecommendedRoutes = rankRoutes(pack, routeBlocked, routeWarnings)
	}

	outcome := "ok"
	if !out.OK() {
		outcome = "blocked"
	}
	s.metrics.IncrementEvaluation(jurisdiction.String(), product.String(), outcome)
	s.metrics.ObserveEvaluateLatency(jurisdiction.String(), product.String(), time.Since(start))

	return out, nil
}

// rankRoutes orders unblocked routes by ascending warning count, ties broken
// by the pack's documented default order. Never by rule-file insertion order.
func rankRoutes(pack *rules.Pack, blocked map[string]bool, warnings map[string]int) []RecommendedRoute {
	defaultRank := make(map[string]int, len(pack.DefaultRouteOrder))
	for i, code := range pack.DefaultRouteOrder {
		defaultRank[code] = i
	}

	ranked := make([]RecommendedRoute, 0, len(pack.Routes))
	for _, r := range pack.Routes {
		if blocked[r.Code] {
			continue
		}
		ranked = append(ranked, RecommendedRoute{
			Code:     r.Code,
			Name:     r.Name,
			Form:     r.Form,
			Warnings: warnings[r.Code],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Warnings != ranked[j].Warnings {
			return ranked[i].Warnings < ranked[j].Warnings
		}
		ri, iOK := defaultRank[ranked[i].Code]
		rj, jOK := defaultRank[ranked[j].Code]
		if iOK && jOK {
			return ri < rj
		}
		return iOK
	})
	return ranked
}

func requirementsMet(activation map[string]any, requires []string) bool {
	for _, path := range requires {
		if !rules.PathPresent(activation, path) {
			return false
		}
	}
	return true
}
