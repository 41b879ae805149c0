package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	dErrors "caseflow/pkg/domain-errors"
	"caseflow/pkg/platform/httputil"
)

// Middleware limits requests per client IP. On store failure it fails open:
// throttling is protection, not a correctness gate.
func Middleware(store Store, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := store.Allow(r.Context(), clientIP(r), limit, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit check failed", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retry := int(time.Until(result.ResetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
