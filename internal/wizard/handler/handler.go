// Package handler exposes the wizard case API over HTTP. Handlers stay thin:
// decode, delegate, encode. All rule semantics live behind the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"caseflow/internal/audit"
	"caseflow/internal/decision"
	"caseflow/internal/facts"
	"caseflow/internal/notice"
	"caseflow/internal/platform/middleware"
	"caseflow/internal/wizard"
	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
	"caseflow/pkg/platform/httputil"
	"caseflow/pkg/requestcontext"
)

// Service defines the wizard operations the HTTP layer needs.
type Service interface {
	CreateCase(ctx context.Context, jurisdiction id.Jurisdiction, product id.Product) (*wizard.Case, string, error)
	GetCase(ctx context.Context, caseID id.CaseID) (*wizard.Case, error)
	Facts(ctx context.Context, caseID id.CaseID) (facts.Snapshot, error)
	Answer(ctx context.Context, caseID id.CaseID, partial facts.WizardFacts, expectedVersion *int64) (*wizard.GateResult, error)
	Gate(ctx context.Context, caseID id.CaseID) (*wizard.GateResult, error)
	Preview(ctx context.Context, caseID id.CaseID) (*decision.Output, int64, error)
	Generate(ctx context.Context, caseID id.CaseID) (*wizard.GeneratePayload, error)
	NoticeCompliance(ctx context.Context, caseID id.CaseID, routeCode string) (*notice.Result, error)
	NormalizerDiagnostics(ctx context.Context, caseID id.CaseID) (*wizard.Diagnostics, error)
	Events(ctx context.Context, caseID id.CaseID) ([]audit.Event, error)
	MarkPaid(ctx context.Context, caseID id.CaseID) (*wizard.Case, error)
}

// Handler handles the /cases routes.
type Handler struct {
	service     Service
	logger      *slog.Logger
	validator   middleware.TokenValidator
	createLimit func(http.Handler) http.Handler
}

// New creates a new wizard Handler. createLimit throttles the anonymous case
// creation route; nil disables throttling.
func New(service Service, logger *slog.Logger, validator middleware.TokenValidator, createLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:     service,
		logger:      logger,
		validator:   validator,
		createLimit: createLimit,
	}
}

// Register mounts the case routes. Everything under /cases/{caseID} requires
// a bearer token scoped to that case.
func (h *Handler) Register(r chi.Router) {
	if h.createLimit != nil {
		r.With(h.createLimit).Post("/cases", h.handleCreateCase)
	} else {
		r.Post("/cases", h.handleCreateCase)
	}

	r.Route("/cases/{caseID}", func(r chi.Router) {
		r.Use(middleware.RequireCaseToken(h.validator, h.logger))
		r.Get("/", h.handleGetCase)
		r.Get("/facts", h.handleGetFacts)
		r.Post("/answers", h.handleAnswer)
		r.Get("/gate", h.handleGate)
		r.Get("/preview", h.handlePreview)
		r.Post("/generate", h.handleGenerate)
		r.Get("/notice", h.handleNotice)
		r.Get("/diagnostics", h.handleDiagnostics)
		r.Get("/events", h.handleEvents)
		r.Post("/payment", h.handlePayment)
	})
}

func (h *Handler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	jurisdiction, err := id.ParseJurisdiction(req.Jurisdiction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	product, err := id.ParseProduct(req.Product)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, token, err := h.service.CreateCase(ctx, jurisdiction, product)
	if err != nil {
		h.writeServiceError(ctx, w, "create case", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateCaseResponse{Case: c, Token: token})
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.service.GetCase(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "get case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleGetFacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.service.Facts(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "get facts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FactsResponse{Facts: snap.Facts, Version: snap.Version})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	expectedVersion, err := parseIfMatch(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Answer(ctx, requestcontext.CaseID(ctx), req.Facts, expectedVersion)
	if err != nil {
		h.writeServiceError(ctx, w, "answer", err)
		return
	}

	// Blocking issues are a normal gate outcome, not an HTTP failure.
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.Gate(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "gate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, version, err := h.service.Preview(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "preview", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PreviewResponse{Decision: out, Version: version})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := h.service.Generate(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		// A blocked generation still carries the evaluation so the client
		// sees exactly what the gate would have reported.
		if payload != nil && dErrors.Is(err, dErrors.CodeUnprocessable) {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, generateResponse(payload))
			return
		}
		h.writeServiceError(ctx, w, "generate", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, generateResponse(payload))
}

func (h *Handler) handleNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.NoticeCompliance(ctx, requestcontext.CaseID(ctx), r.URL.Query().Get("route"))
	if err != nil {
		h.writeServiceError(ctx, w, "notice compliance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	diag, err := h.service.NormalizerDiagnostics(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "diagnostics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, diag)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.Events(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: toEventViews(events)})
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.service.MarkPaid(ctx, requestcontext.CaseID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "mark paid", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

func generateResponse(payload *wizard.GeneratePayload) GenerateResponse {
	return GenerateResponse{
		Case:     payload.Case,
		Decision: payload.Decision,
		Facts:    payload.Facts.Activation(),
		Notice:   payload.Notice,
		Version:  payload.Version,
	}
}

// parseIfMatch reads the optional If-Match header as a fact version.
func parseIfMatch(r *http.Request) (*int64, error) {
	header := r.Header.Get("If-Match")
	if header == "" {
		return nil, nil
	}
	version, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "If-Match must be a fact version number")
	}
	return &version, nil
}
