package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "caseflow/pkg/domain"
)

// PostgresStore persists the trail in the case_events table:
//
//	CREATE TABLE case_events (
//	    id         BIGSERIAL PRIMARY KEY,
//	    case_id    UUID NOT NULL,
//	    action     TEXT NOT NULL,
//	    detail     TEXT NOT NULL DEFAULT '',
//	    request_id TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX case_events_case_id_idx ON case_events (case_id, id);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO case_events (case_id, action, detail, request_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		event.CaseID.String(), string(event.Action), event.Detail, event.RequestID, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append case event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, detail, request_id, created_at FROM case_events WHERE case_id = $1 ORDER BY id`,
		caseID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list case events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event := Event{CaseID: caseID}
		var action string
		if err := rows.Scan(&action, &event.Detail, &event.RequestID, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan case event: %w", err)
		}
		event.Action = Action(action)
		events = append(events, event)
	}
	return events, rows.Err()
}
