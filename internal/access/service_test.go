package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"flightsurety/internal/access/store/allowlist"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/publisher"
	"flightsurety/pkg/platform/audit/store/memory"
	"flightsurety/pkg/platform/tx"
	"flightsurety/pkg/testutil"
)

type GateSuite struct {
	suite.Suite
	ctx    context.Context
	owner  domain.PrincipalID
	events *memory.InMemoryStore
	gate   *Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.owner = testutil.Principal(1)
	s.events = memory.NewInMemoryStore()
	s.gate = s.newGate(false)
}

func (s *GateSuite) newGate(enforce bool) *Gate {
	g, err := New(s.owner, allowlist.NewInMemory(), tx.NewSerializer(),
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithEnforcedAllowlist(enforce),
	)
	s.Require().NoError(err)
	return g
}

func (s *GateSuite) actions() []string {
	all, err := s.events.ListAll(s.ctx)
	s.Require().NoError(err)
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.Action
	}
	return out
}

func (s *GateSuite) TestNew() {
	s.Run("rejects zero owner", func() {
		_, err := New(domain.PrincipalID{}, allowlist.NewInMemory(), tx.NewSerializer())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("starts operational", func() {
		s.True(s.gate.IsOperational(s.ctx))
		s.Equal(s.owner, s.gate.Owner())
	})
}

func (s *GateSuite) TestSetOperational() {
	s.Run("non-owner is rejected", func() {
		err := s.gate.SetOperational(s.ctx, testutil.Caller(9), false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
		s.True(s.gate.IsOperational(s.ctx))
	})

	s.Run("owner can pause and resume while paused", func() {
		s.Require().NoError(s.gate.SetOperational(s.ctx, s.owner.Caller(), false))
		s.False(s.gate.IsOperational(s.ctx))
		s.True(dErrors.HasCode(s.gate.RequireOperational(s.ctx), dErrors.CodeNotOperational))

		s.Require().NoError(s.gate.SetOperational(s.ctx, s.owner.Caller(), true))
		s.True(s.gate.IsOperational(s.ctx))
		s.NoError(s.gate.RequireOperational(s.ctx))
	})

	s.Run("records before and after", func() {
		events, err := s.events.ListBySubject(s.ctx, s.owner.String())
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(string(audit.EventOperationalChanged), events[0].Action)
		s.Equal("true", events[0].Before)
		s.Equal("false", events[0].After)
	})
}

func (s *GateSuite) TestAuthorizeCaller() {
	collaborator := testutil.Caller(2)

	s.Run("non-owner is rejected", func() {
		err := s.gate.AuthorizeCaller(s.ctx, collaborator, collaborator)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
	})

	s.Run("requires operational", func() {
		s.Require().NoError(s.gate.SetOperational(s.ctx, s.owner.Caller(), false))
		err := s.gate.AuthorizeCaller(s.ctx, s.owner.Caller(), collaborator)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOperational))
		err = s.gate.AuthorizeCaller(s.ctx, collaborator, collaborator)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOperational), "paused wins over the owner check")
		s.Require().NoError(s.gate.SetOperational(s.ctx, s.owner.Caller(), true))
	})

	s.Run("owner adds to allow-list", func() {
		ok, err := s.gate.IsCallerAuthorized(s.ctx, collaborator)
		s.Require().NoError(err)
		s.False(ok)

		s.Require().NoError(s.gate.AuthorizeCaller(s.ctx, s.owner.Caller(), collaborator))

		ok, err = s.gate.IsCallerAuthorized(s.ctx, collaborator)
		s.Require().NoError(err)
		s.True(ok)

		ids, err := s.gate.AuthorizedCallers(s.ctx)
		s.Require().NoError(err)
		s.Equal([]domain.CallerID{collaborator}, ids)
	})

	s.Run("zero id is rejected", func() {
		err := s.gate.AuthorizeCaller(s.ctx, s.owner.Caller(), domain.CallerID{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// The trusted-caller check is advisory by default and enforcing when
// configured; both modes record a caller_checked event.
func (s *GateSuite) TestRequireAuthorizedCaller() {
	stranger := testutil.Caller(7)

	s.Run("advisory mode lets unknown callers through", func() {
		s.events.Clear()
		s.NoError(s.gate.RequireAuthorizedCaller(s.ctx, stranger, "register_airline"))

		events, err := s.events.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventCallerChecked), events[0].Action)
		s.Equal("false", events[0].After)
		s.Equal("advisory", events[0].Decision)
	})

	s.Run("enforcing mode rejects unknown callers", func() {
		s.events.Clear()
		g := s.newGate(true)
		err := g.RequireAuthorizedCaller(s.ctx, stranger, "register_airline")
		s.True(dErrors.HasCode(err, dErrors.CodeCallerNotAuthorized))
		s.Equal([]string{string(audit.EventCallerChecked)}, s.actions())

		s.Require().NoError(g.AuthorizeCaller(s.ctx, s.owner.Caller(), stranger))
		s.NoError(g.RequireAuthorizedCaller(s.ctx, stranger, "register_airline"))
	})
}

func (s *GateSuite) TestBootstrapSeedsAllowlist() {
	callers := []domain.CallerID{testutil.Caller(3), testutil.Caller(4)}
	undo, err := s.gate.Bootstrap(s.ctx, callers)
	s.Require().NoError(err)

	for _, c := range callers {
		ok, err := s.gate.IsCallerAuthorized(s.ctx, c)
		s.Require().NoError(err)
		s.True(ok)
	}

	undo(s.ctx)
	ids, err := s.gate.AuthorizedCallers(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids, "undo removes the seeded callers")
}

func (s *GateSuite) TestBootstrapRejectsBeforeWriting() {
	_, err := s.gate.Bootstrap(s.ctx, []domain.CallerID{testutil.Caller(3), {}})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	ids, err := s.gate.AuthorizedCallers(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
	s.Empty(s.actions())
}

func (s *GateSuite) TestBootstrapRollsBackOnStoreFailure() {
	store := &flakyAllowlist{InMemoryStore: allowlist.NewInMemory(), failOn: testutil.Caller(5)}
	pre := testutil.Caller(9)
	s.Require().NoError(store.Add(s.ctx, pre))

	g, err := New(s.owner, store, tx.NewSerializer())
	s.Require().NoError(err)

	_, err = g.Bootstrap(s.ctx, []domain.CallerID{testutil.Caller(3), pre, testutil.Caller(5)})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	ids, err := g.AuthorizedCallers(s.ctx)
	s.Require().NoError(err)
	s.Equal([]domain.CallerID{pre}, ids, "only callers present before the seed survive")
}

// flakyAllowlist fails Add for one id.
type flakyAllowlist struct {
	*allowlist.InMemoryStore
	failOn domain.CallerID
}

func (f *flakyAllowlist) Add(ctx context.Context, id domain.CallerID) error {
	if id == f.failOn {
		return errors.New("connection reset")
	}
	return f.InMemoryStore.Add(ctx, id)
}
