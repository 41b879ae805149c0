package wizard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "caseflow/pkg/domain"
	"caseflow/pkg/platform/sentinel"
)

// PostgresStore persists case records in the cases table:
//
//	CREATE TABLE cases (
//	    id                UUID PRIMARY KEY,
//	    jurisdiction      TEXT NOT NULL,
//	    product           TEXT NOT NULL,
//	    status            TEXT NOT NULL,
//	    recommended_route TEXT NOT NULL DEFAULT '',
//	    paid_at           TIMESTAMPTZ,
//	    created_at        TIMESTAMPTZ NOT NULL,
//	    updated_at        TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Case) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (id, jurisdiction, product, status, recommended_route, paid_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID.String(), c.Jurisdiction.String(), c.Product.String(), string(c.Status),
		c.RecommendedRoute, c.PaidAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, caseID id.CaseID) (*Case, error) {
	var (
		c            Case
		jurisdiction string
		product      string
		status       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT jurisdiction, product, status, recommended_route, paid_at, created_at, updated_at
		 FROM cases WHERE id = $1`,
		caseID.String(),
	).Scan(&jurisdiction, &product, &status, &c.RecommendedRoute, &c.PaidAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}
	c.ID = caseID
	c.Jurisdiction = id.Jurisdiction(jurisdiction)
	c.Product = id.Product(product)
	c.Status = Status(status)
	return &c, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *Case) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cases SET status = $1, recommended_route = $2, paid_at = $3, updated_at = $4 WHERE id = $5`,
		string(c.Status), c.RecommendedRoute, c.PaidAt, c.UpdatedAt, c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
