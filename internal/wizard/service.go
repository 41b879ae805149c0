package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"caseflow/internal/audit"
	"caseflow/internal/casefacts"
	"caseflow/internal/casetoken"
	"caseflow/internal/decision"
	"caseflow/internal/facts"
	"caseflow/internal/notice"
	"caseflow/internal/platform/redis"
	"caseflow/internal/rules"
	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
	"caseflow/pkg/platform/sentinel"
	"caseflow/pkg/requestcontext"
)

// defaultRecommendationTTL bounds the advisory Redis mirror of the cached
// recommended route when the config does not say otherwise.
const defaultRecommendationTTL = 10 * time.Minute

// GateResult is the per-answer verdict the wizard UI renders. Incomplete data
// is a normal, structured response, never an HTTP error.
type GateResult struct {
	OK               bool             `json:"ok"`
	Blocking         []decision.Issue `json:"blocking_issues"`
	Warnings         []decision.Issue `json:"warnings"`
	RecommendedRoute string           `json:"recommended_route,omitempty"`
	Version          int64            `json:"version"`
}

// Diagnostics exposes the normalizer's bookkeeping for a case: fact keys no
// mapping consumes and alias disagreements.
type Diagnostics struct {
	Unconsumed  []string              `json:"unconsumed_fields"`
	Ambiguities []casefacts.Ambiguity `json:"ambiguities"`
	Version     int64                 `json:"version"`
}

// GeneratePayload is the handoff to the document renderer: the decision
// output plus enough structured facts that the renderer never re-derives
// legal conclusions.
type GeneratePayload struct {
	Case     *Case               `json:"case"`
	Decision *decision.Output    `json:"decision"`
	Facts    casefacts.CaseFacts `json:"-"`
	Notice   *notice.Result      `json:"notice,omitempty"`
	Version  int64               `json:"version"`
}

// Service orchestrates the case lifecycle. It owns no rule logic: evaluation
// is delegated to the decision service, and the gate, preview, and generate
// flows all pass through evaluate below.
type Service struct {
	cases     Store
	facts     facts.Store
	decisions *decision.Service
	notices   *notice.Service
	tokens    *casetoken.Service
	cache     *redis.Client
	trail     *audit.Recorder
	logger    *slog.Logger

	paidEditWindow    time.Duration
	recommendationTTL time.Duration
}

func NewService(
	cases Store,
	factStore facts.Store,
	decisions *decision.Service,
	notices *notice.Service,
	tokens *casetoken.Service,
	cache *redis.Client,
	trail *audit.Recorder,
	logger *slog.Logger,
	paidEditWindow time.Duration,
	recommendationTTL time.Duration,
) *Service {
	if recommendationTTL <= 0 {
		recommendationTTL = defaultRecommendationTTL
	}
	return &Service{
		cases:             cases,
		facts:             factStore,
		decisions:         decisions,
		notices:           notices,
		tokens:            tokens,
		cache:             cache,
		trail:             trail,
		logger:            logger,
		paidEditWindow:    paidEditWindow,
		recommendationTTL: recommendationTTL,
	}
}

// CreateCase opens a new case in the partition, initializes its empty
// fact-set, and issues the bearer token all further case routes require.
func (s *Service) CreateCase(ctx context.Context, jurisdiction id.Jurisdiction, product id.Product) (*Case, string, error) {
	now := requestcontext.Now(ctx)
	c := &Case{
		ID:           id.NewCaseID(),
		Jurisdiction: jurisdiction,
		Product:      product,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, "", translateStoreErr(err, "create case")
	}
	if _, err := s.facts.Init(ctx, c.ID); err != nil {
		return nil, "", translateStoreErr(err, "initialize facts")
	}

	token, err := s.tokens.Issue(c.ID, now)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID,
		"jurisdiction", jurisdiction,
		"product", product,
	)
	s.trail.Record(ctx, c.ID, audit.ActionCaseCreated, string(jurisdiction)+"/"+string(product))
	return c, token, nil
}

// GetCase returns the case record with its cached recommendation.
func (s *Service) GetCase(ctx context.Context, caseID id.CaseID) (*Case, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, translateStoreErr(err, "load case")
	}
	return c, nil
}

// Facts returns the current fact snapshot.
func (s *Service) Facts(ctx context.Context, caseID id.CaseID) (facts.Snapshot, error) {
	snap, err := s.facts.Get(ctx, caseID)
	if err != nil {
		return facts.Snapshot{}, translateStoreErr(err, "load facts")
	}
	return snap, nil
}

// Answer merges a partial fact update onto the case and gates the result.
// expectedVersion carries the client's If-Match version; a mismatch is a
// conflict and the store is left unchanged. Merges are rejected once the
// case is frozen.
func (s *Service) Answer(ctx context.Context, caseID id.CaseID, partial facts.WizardFacts, expectedVersion *int64) (*GateResult, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, translateStoreErr(err, "load case")
	}
	if !c.CanEdit(requestcontext.Now(ctx), s.paidEditWindow) {
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeConflict, "case is no longer editable")
	}
	if len(partial) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "answer must contain at least one fact")
	}

	snap, err := s.facts.Merge(ctx, caseID, partial, expectedVersion)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "fact version mismatch, reload and retry")
		}
		return nil, translateStoreErr(err, "merge facts")
	}

	if c.Status == StatusDraft {
		c.Status = StatusInProgress
	}
	s.trail.Record(ctx, caseID, audit.ActionFactsMerged, fmt.Sprintf("version %d", snap.Version))

	return s.gate(ctx, c, snap)
}

// Gate re-evaluates the case from its persisted facts.
func (s *Service) Gate(ctx context.Context, caseID id.CaseID) (*GateResult, error) {
	c, snap, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.gate(ctx, c, snap)
}

// Preview runs the same evaluation the gate runs and returns the full
// decision output for the review screen.
func (s *Service) Preview(ctx context.Context, caseID id.CaseID) (*decision.Output, int64, error) {
	c, snap, err := s.load(ctx, caseID)
	if err != nil {
		return nil, 0, err
	}
	out, _, err := s.evaluate(ctx, c, snap)
	if err != nil {
		return nil, 0, err
	}
	return out, snap.Version, nil
}

// Generate performs the generation handoff. Blocking issues fail it with an
// unprocessable error; the handler surfaces the same issue structures the
// gate reported, because they come from the same evaluation.
func (s *Service) Generate(ctx context.Context, caseID id.CaseID) (*GeneratePayload, error) {
	c, snap, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	out, cf, err := s.evaluate(ctx, c, snap)
	if err != nil {
		return nil, err
	}

	payload := &GeneratePayload{
		Case:     c,
		Decision: out,
		Facts:    cf,
		Version:  snap.Version,
	}

	if c.Product == id.ProductNoticeOnly {
		result, err := s.notices.Evaluate(ctx, cf, c.Jurisdiction, c.Product, "")
		if err != nil {
			return nil, err
		}
		payload.Notice = result
		if !result.OK() {
			s.trail.Record(ctx, caseID, audit.ActionGenerationBlocked, "notice compliance")
			return payload, dErrors.New(dErrors.CodeUnprocessable, "notice compliance failures block generation")
		}
	}
	if !out.OK() {
		s.trail.Record(ctx, caseID, audit.ActionGenerationBlocked, fmt.Sprintf("%d blocking issues", len(out.Blocking)))
		return payload, dErrors.New(dErrors.CodeUnprocessable, "blocking issues prevent document generation")
	}

	c.Status = StatusCompleted
	c.RecommendedRoute = out.BestRoute()
	s.persistRecommendation(ctx, c)
	s.trail.Record(ctx, caseID, audit.ActionGenerationCompleted, "route "+c.RecommendedRoute)

	return payload, nil
}

// NoticeCompliance evaluates notice compliance and the computed statutory
// dates for the case, optionally for an explicit route.
func (s *Service) NoticeCompliance(ctx context.Context, caseID id.CaseID, routeCode string) (*notice.Result, error) {
	c, snap, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	cf := s.normalize(ctx, c, snap).Facts
	return s.notices.Evaluate(ctx, cf, c.Jurisdiction, c.Product, routeCode)
}

// NormalizerDiagnostics returns unconsumed fact keys and alias disagreements.
func (s *Service) NormalizerDiagnostics(ctx context.Context, caseID id.CaseID) (*Diagnostics, error) {
	c, snap, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	nr := s.normalize(ctx, c, snap)
	return &Diagnostics{
		Unconsumed:  nr.Unconsumed,
		Ambiguities: nr.Ambiguities,
		Version:     snap.Version,
	}, nil
}

// Events returns the audit trail for a case in append order.
func (s *Service) Events(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, translateStoreErr(err, "load case")
	}
	return s.trail.Trail(ctx, caseID)
}

// MarkPaid records payment and freezes the case once the edit window lapses.
func (s *Service) MarkPaid(ctx context.Context, caseID id.CaseID) (*Case, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, translateStoreErr(err, "load case")
	}
	switch c.Status {
	case StatusPaid:
		return c, nil
	case StatusFulfilled, StatusFailed:
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeConflict, "case is already settled")
	}

	now := requestcontext.Now(ctx)
	c.Status = StatusPaid
	c.PaidAt = &now
	c.UpdatedAt = now
	if err := s.cases.Update(ctx, c); err != nil {
		return nil, translateStoreErr(err, "update case")
	}
	s.trail.Record(ctx, caseID, audit.ActionPaymentRecorded, "")
	return c, nil
}

func (s *Service) load(ctx context.Context, caseID id.CaseID) (*Case, facts.Snapshot, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, facts.Snapshot{}, translateStoreErr(err, "load case")
	}
	snap, err := s.facts.Get(ctx, caseID)
	if err != nil {
		return nil, facts.Snapshot{}, translateStoreErr(err, "load facts")
	}
	return c, snap, nil
}

// normalize projects the fact snapshot and stamps the authoritative partition
// from the case record over whatever the fact dictionary claims.
func (s *Service) normalize(ctx context.Context, c *Case, snap facts.Snapshot) casefacts.Result {
	nr := casefacts.Normalize(snap.Facts)
	nr.Facts.Meta.Jurisdiction = c.Jurisdiction
	nr.Facts.Meta.Product = c.Product

	if len(nr.Ambiguities) > 0 {
		s.logger.WarnContext(ctx, "alias disagreement in facts",
			"case_id", c.ID,
			"count", len(nr.Ambiguities),
		)
	}
	return nr
}

// evaluate is the single evaluation path behind gate, preview, and generate.
// Alias ambiguities surface as warning issues so data-entry bugs are not
// masked by silent priority picks.
func (s *Service) evaluate(ctx context.Context, c *Case, snap facts.Snapshot) (*decision.Output, casefacts.CaseFacts, error) {
	nr := s.normalize(ctx, c, snap)

	out, err := s.decisions.Evaluate(ctx, nr.Facts, c.Jurisdiction, c.Product)
	if err != nil {
		return nil, casefacts.CaseFacts{}, err
	}

	for _, amb := range nr.Ambiguities {
		out.Warnings = append(out.Warnings, decision.Issue{
			Code:     "NORMALIZATION_AMBIGUITY",
			Severity: rules.SeverityWarning,
			Message:  "Conflicting values were supplied for the same field; the value from " + amb.ChosenKey + " was used.",
			Fields:   amb.Keys,
		})
	}

	return out, nr.Facts, nil
}

func (s *Service) gate(ctx context.Context, c *Case, snap facts.Snapshot) (*GateResult, error) {
	out, _, err := s.evaluate(ctx, c, snap)
	if err != nil {
		return nil, err
	}

	result := &GateResult{
		OK:               out.OK(),
		Blocking:         out.Blocking,
		Warnings:         out.Warnings,
		RecommendedRoute: out.BestRoute(),
		Version:          snap.Version,
	}

	if c.RecommendedRoute != result.RecommendedRoute || c.Status == StatusInProgress {
		c.RecommendedRoute = result.RecommendedRoute
		s.persistRecommendation(ctx, c)
	}

	return result, nil
}

// persistRecommendation caches the recommendation on the case record and
// mirrors it to Redis. Best-effort: the cache is advisory and every
// evaluation recomputes from facts.
func (s *Service) persistRecommendation(ctx context.Context, c *Case) {
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.cases.Update(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "persist recommendation failed",
			"case_id", c.ID,
			"error", err.Error(),
		)
	}
	if s.cache != nil && c.RecommendedRoute != "" {
		key := "caseflow:recommendation:" + c.ID.String()
		if err := s.cache.Set(ctx, key, c.RecommendedRoute, s.recommendationTTL).Err(); err != nil {
			s.logger.WarnContext(ctx, "recommendation cache write failed",
				"case_id", c.ID,
				"error", err.Error(),
			)
		}
	}
}

func translateStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "case already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}
