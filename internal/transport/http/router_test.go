package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"caseflow/internal/audit"
	"caseflow/internal/casetoken"
	"caseflow/internal/decision"
	"caseflow/internal/facts"
	"caseflow/internal/notice"
	"caseflow/internal/platform/metrics"
	"caseflow/internal/rules"
	"caseflow/internal/wizard"
	wizardhandler "caseflow/internal/wizard/handler"
)

type staticCheck struct{ err error }

func (c staticCheck) Health(context.Context) error { return c.err }

// promauto registers on the default registry, so the test binary may build the
// HTTP metrics only once.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() { testMetrics = metrics.New() })
	return testMetrics
}

func newRouter(t *testing.T, checks map[string]HealthChecker) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	evaluator, err := rules.NewPredicateEvaluator()
	if err != nil {
		t.Fatalf("create evaluator: %v", err)
	}
	loader := rules.NewLoader("")
	decisions := decision.NewService(loader, evaluator, logger, nil)
	notices := notice.NewService(decisions, loader, logger)
	tokens := casetoken.NewService("test-signing-key", time.Hour)
	trail := audit.NewRecorder(audit.NewInMemoryStore(), logger)
	service := wizard.NewService(
		wizard.NewInMemoryStore(), facts.NewInMemoryStore(),
		decisions, notices, tokens, nil, trail, logger, 24*time.Hour, 10*time.Minute,
	)

	return NewRouter(Deps{
		Wizard:  wizardhandler.New(service, logger, tokens, nil),
		Logger:  logger,
		Metrics: sharedMetrics(),
		Checks:  checks,
	})
}

func TestHealthzAllChecksPass(t *testing.T) {
	router := newRouter(t, map[string]HealthChecker{
		"database": staticCheck{},
		"cache":    staticCheck{},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthzDegraded(t *testing.T) {
	router := newRouter(t, map[string]HealthChecker{
		"database": staticCheck{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a check fails, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestCaseRoutesMounted(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/cases", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// An empty body is a 400 from the handler, not a 404 from the mux.
	if rec.Code == http.StatusNotFound {
		t.Fatal("expected /cases to be routed")
	}
}
