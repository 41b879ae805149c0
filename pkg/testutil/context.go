package testutil

import (
	"net/http"
	"time"

	id "caseflow/pkg/domain"
	"caseflow/pkg/requestcontext"
)

// WithCaseID injects a case scope into the request context, simulating what
// the case token middleware does for authenticated requests.
func WithCaseID(req *http.Request, caseID id.CaseID) *http.Request {
	return req.WithContext(requestcontext.WithCaseID(req.Context(), caseID))
}

// WithFixedTime pins the request-scoped clock so statutory date math is
// deterministic in tests.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
