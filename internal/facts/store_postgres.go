package facts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "caseflow/pkg/domain"
	"caseflow/pkg/platform/sentinel"
	"caseflow/pkg/requestcontext"
)

// PostgresStore persists fact snapshots in the wizard_facts table:
//
//	CREATE TABLE wizard_facts (
//	    case_id    UUID PRIMARY KEY,
//	    facts      JSONB NOT NULL,
//	    version    BIGINT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//
// Merges run inside a transaction with SELECT ... FOR UPDATE so concurrent
// merges to the same case serialize and each observes the prior result.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Init(ctx context.Context, caseID id.CaseID) (Snapshot, error) {
	now := requestcontext.Now(ctx)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wizard_facts (case_id, facts, version, updated_at) VALUES ($1, '{}'::jsonb, 0, $2)`,
		caseID.String(), now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return Snapshot{}, sentinel.ErrConflict
		}
		return Snapshot{}, fmt.Errorf("init facts: %w", err)
	}
	return Snapshot{CaseID: caseID, Facts: WizardFacts{}, Version: 0, UpdatedAt: now}, nil
}

func (s *PostgresStore) Get(ctx context.Context, caseID id.CaseID) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT facts, version, updated_at FROM wizard_facts WHERE case_id = $1`,
		caseID.String(),
	)
	return scanSnapshot(row, caseID)
}

func (s *PostgresStore) Merge(ctx context.Context, caseID id.CaseID, partial WizardFacts, expectedVersion *int64) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT facts, version, updated_at FROM wizard_facts WHERE case_id = $1 FOR UPDATE`,
		caseID.String(),
	)
	current, err := scanSnapshot(row, caseID)
	if err != nil {
		return Snapshot{}, err
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		return Snapshot{}, sentinel.ErrConflict
	}

	next := Snapshot{
		CaseID:    caseID,
		Facts:     merge(current.Facts, partial),
		Version:   current.Version + 1,
		UpdatedAt: requestcontext.Now(ctx),
	}
	payload, err := json.Marshal(next.Facts)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal facts: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wizard_facts SET facts = $1, version = $2, updated_at = $3 WHERE case_id = $4`,
		payload, next.Version, next.UpdatedAt, caseID.String(),
	); err != nil {
		return Snapshot{}, fmt.Errorf("update facts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit merge: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) Version(ctx context.Context, caseID id.CaseID) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM wizard_facts WHERE case_id = $1`,
		caseID.String(),
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return version, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner, caseID id.CaseID) (Snapshot, error) {
	var (
		payload []byte
		snap    Snapshot
	)
	err := row.Scan(&payload, &snap.Version, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan facts: %w", err)
	}
	snap.CaseID = caseID
	if err := json.Unmarshal(payload, &snap.Facts); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal facts: %w", err)
	}
	return snap, nil
}
