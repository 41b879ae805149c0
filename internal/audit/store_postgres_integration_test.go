//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"caseflow/internal/audit"
	id "caseflow/pkg/domain"
	"caseflow/pkg/testutil/containers"
)

type PostgresTrailSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
	ctx      context.Context
}

func TestPostgresTrailSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresTrailSuite))
}

func (s *PostgresTrailSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresTrailSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "case_events"))
}

func (s *PostgresTrailSuite) TestAppendAndListInOrder() {
	caseID := id.NewCaseID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	actions := []audit.Action{
		audit.ActionCaseCreated,
		audit.ActionFactsMerged,
		audit.ActionGenerationCompleted,
	}
	for i, action := range actions {
		err := s.store.Append(s.ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			CaseID:    caseID,
			Action:    action,
			Detail:    "step",
			RequestID: "req-1",
		})
		s.Require().NoError(err)
	}

	events, err := s.store.ListByCase(s.ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(events, len(actions))
	for i, action := range actions {
		s.Equal(action, events[i].Action)
		s.Equal(caseID, events[i].CaseID)
	}
}

func (s *PostgresTrailSuite) TestListIsolatedByCase() {
	first, second := id.NewCaseID(), id.NewCaseID()
	err := s.store.Append(s.ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		CaseID:    first,
		Action:    audit.ActionCaseCreated,
	})
	s.Require().NoError(err)

	events, err := s.store.ListByCase(s.ctx, second)
	s.Require().NoError(err)
	s.Empty(events)
}
