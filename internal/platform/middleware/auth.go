package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
	"caseflow/pkg/platform/httputil"
	"caseflow/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the case it is scoped to.
type TokenValidator interface {
	Validate(tokenString string) (id.CaseID, error)
}

// RequireCaseToken enforces that the bearer token's case scope matches the
// {caseID} route parameter. The validated case ID is injected into the
// request context for handlers and services.
func RequireCaseToken(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			caseID, err := validator.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logger.WarnContext(ctx, "case token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"error", err.Error(),
				)
				httputil.WriteError(w, err)
				return
			}

			if param := chi.URLParam(r, "caseID"); param != "" {
				routeCase, err := id.ParseCaseID(param)
				if err != nil {
					httputil.WriteError(w, err)
					return
				}
				if routeCase != caseID {
					httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token is not scoped to this case"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaseID(ctx, caseID)))
		})
	}
}
