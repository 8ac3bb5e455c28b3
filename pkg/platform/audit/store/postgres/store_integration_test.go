//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/store/postgres"
	"flightsurety/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ledger_events"))
}

func event(action audit.AuditEvent, subject string, at time.Time) audit.Event {
	return audit.Event{
		ID:        uuid.NewString(),
		Category:  action.Category(),
		Timestamp: at,
		Action:    string(action),
		Subject:   subject,
		ActorID:   "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2",
	}
}

func (s *PostgresStoreSuite) TestAppendAndListBySubject() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := event(audit.EventAirlineCreated, "0xairline", now)
	second := event(audit.EventAirlineRegistered, "0xairline", now.Add(time.Second))
	other := event(audit.EventVoteCast, "0xother", now)

	for _, e := range []audit.Event{first, second, other} {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	events, err := s.store.ListBySubject(ctx, "0xairline")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(first.ID, events[0].ID)
	s.Equal(second.ID, events[1].ID)
	s.True(first.Timestamp.Equal(events[0].Timestamp))
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentOnID() {
	ctx := context.Background()
	e := event(audit.EventAirlineFunded, "0xairline", time.Now().UTC())

	s.Require().NoError(s.store.Append(ctx, e))
	s.Require().NoError(s.store.Append(ctx, e))

	events, err := s.store.ListBySubject(ctx, "0xairline")
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestListRecentKeepsArrivalOrder() {
	ctx := context.Background()
	now := time.Now().UTC()
	var ids []string
	for i := 0; i < 5; i++ {
		e := event(audit.EventVoteCast, "0xcandidate", now)
		ids = append(ids, e.ID)
		s.Require().NoError(s.store.Append(ctx, e))
	}

	events, err := s.store.ListRecent(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(ids[2:], []string{events[0].ID, events[1].ID, events[2].ID})
}

func (s *PostgresStoreSuite) TestListByActions() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.Append(ctx, event(audit.EventInsuranceBuilt, "0xk1", now)))
	s.Require().NoError(s.store.Append(ctx, event(audit.EventCallerChecked, "0xc1", now)))
	s.Require().NoError(s.store.Append(ctx, event(audit.EventInsuranceCredited, "0xk1", now)))

	events, err := s.store.ListByActions(ctx, []audit.AuditEvent{audit.EventInsuranceBuilt, audit.EventInsuranceCredited}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventInsuranceBuilt), events[0].Action)
	s.Equal(string(audit.EventInsuranceCredited), events[1].Action)
}
