package audit

import (
	"context"
	"log/slog"

	id "caseflow/pkg/domain"
	"caseflow/pkg/requestcontext"
)

// Recorder captures structured audit events. Append failures are logged, not
// propagated: a broken trail must not block a user's legal workflow.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record appends one event, stamping time and request correlation from ctx.
func (r *Recorder) Record(ctx context.Context, caseID id.CaseID, action Action, detail string) {
	event := Event{
		Timestamp: requestcontext.Now(ctx),
		CaseID:    caseID,
		Action:    action,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := r.store.Append(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "audit append failed",
			"case_id", caseID,
			"action", action,
			"error", err.Error(),
		)
	}
}

// Trail returns the recorded events for a case in append order.
func (r *Recorder) Trail(ctx context.Context, caseID id.CaseID) ([]Event, error) {
	return r.store.ListByCase(ctx, caseID)
}
