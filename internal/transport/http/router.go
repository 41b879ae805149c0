// Package httptransport assembles the HTTP surface: middleware chain, domain
// routes, health, and metrics. Transport concerns only; business logic lives
// behind the handlers' service interfaces.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caseflow/internal/platform/metrics"
	"caseflow/internal/platform/middleware"
	wizardhandler "caseflow/internal/wizard/handler"
	"caseflow/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Wizard  *wizardhandler.Handler
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Optional backing services surfaced by /healthz. Nil entries are skipped.
	Checks map[string]HealthChecker
}

// NewRouter wires the full route tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.ContentTypeJSON)

	deps.Wizard.Register(r)

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
