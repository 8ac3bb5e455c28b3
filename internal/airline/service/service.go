// Package service implements the airline registry: creation, registration,
// voting, funding and flight bookkeeping. Every mutating operation runs as one
// serialized transaction after the access gate admits it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"flightsurety/internal/airline/metrics"
	"flightsurety/internal/airline/models"
	"flightsurety/internal/airline/store"
	"flightsurety/internal/platform/observability"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/tx"
	"flightsurety/pkg/requestcontext"
)

// DefaultMinimumFund is 10 ether expressed in wei.
var DefaultMinimumFund = domain.Ether(10)

type Store interface {
	Create(ctx context.Context, airline *models.Airline, delta models.CounterDelta) error
	FindByID(ctx context.Context, id domain.PrincipalID) (*models.Airline, error)
	Execute(ctx context.Context, id domain.PrincipalID, fn func(*models.Airline) (models.CounterDelta, error)) (*models.Airline, error)
	Counters(ctx context.Context) (models.Counters, error)
	List(ctx context.Context) ([]*models.Airline, error)
}

// Gate is the access check every operation passes first.
type Gate interface {
	RequireOperational(ctx context.Context) error
	RequireAuthorizedCaller(ctx context.Context, caller domain.CallerID, operation string) error
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates the airline registry.
type Service struct {
	store       Store
	gate        Gate
	tx          TxRunner
	minimumFund *uint256.Int
	logger      *slog.Logger
	publisher   observability.Publisher
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher observability.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMinimumFund overrides the minimum contribution accepted by Fund.
func WithMinimumFund(min *uint256.Int) Option {
	return func(s *Service) {
		if min != nil {
			s.minimumFund = new(uint256.Int).Set(min)
		}
	}
}

func New(st Store, gate Gate, txRunner TxRunner, opts ...Option) (*Service, error) {
	if st == nil || gate == nil || txRunner == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "store, gate and tx runner are required")
	}
	s := &Service{
		store:       st,
		gate:        gate,
		tx:          txRunner,
		minimumFund: new(uint256.Int).Set(DefaultMinimumFund),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MinimumFund returns a copy of the configured minimum contribution.
func (s *Service) MinimumFund() *uint256.Int {
	return new(uint256.Int).Set(s.minimumFund)
}

// Bootstrap inserts the first airline as existing and registered. It must run
// inside the ledger's initialization transaction and only once.
func (s *Service) Bootstrap(ctx context.Context, principal domain.PrincipalID) error {
	if !tx.InTx(ctx) {
		return dErrors.New(dErrors.CodeInternal, "bootstrap must run inside a transaction")
	}
	counters, err := s.store.Counters(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read counters")
	}
	if counters.Airlines != 0 {
		return dErrors.New(dErrors.CodeAlreadyExists, "registry is already initialized")
	}

	a, err := models.NewAirline(principal, true, requestcontext.Now(ctx))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "bootstrap principal is required")
	}
	if err := s.store.Create(ctx, a, models.CounterDelta{Airlines: 1, Registered: 1}); err != nil {
		return translate(err)
	}
	observability.LogAudit(ctx, s.logger, s.publisher, audit.EventRegistryBootstrapped,
		"airline", principal.String(),
		"after", "registered",
	)
	return nil
}

// RegisterAirline creates a principal record. An existing principal is
// rejected rather than reset.
func (s *Service) RegisterAirline(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, registered bool) (err error) {
	const op = "register_airline"
	defer s.observe(op, time.Now(), &err)

	if principal.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "airline principal is required")
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		a, err := models.NewAirline(principal, registered, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		delta := models.CounterDelta{Airlines: 1}
		if registered {
			delta.Registered = 1
		}
		if err := s.store.Create(ctx, a, delta); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeAlreadyExists, "airline already exists")
			}
			return translate(err)
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventAirlineCreated,
			"caller", caller.String(),
			"airline", principal.String(),
			"before", "exists=false",
			"after", "exists=true registered="+strconv.FormatBool(registered),
		)
		if s.metrics != nil {
			s.metrics.IncrementAirlinesCreated()
			if registered {
				s.metrics.IncrementRegistrations()
			}
		}
		return nil
	})
}

// SetAirlineRegistered flips an existing principal to registered.
func (s *Service) SetAirlineRegistered(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID) (err error) {
	const op = "set_airline_registered"
	defer s.observe(op, time.Now(), &err)

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		_, err := s.store.Execute(ctx, principal, func(a *models.Airline) (models.CounterDelta, error) {
			if err := a.CanRegister(); err != nil {
				return models.CounterDelta{}, err
			}
			a.ApplyRegistration(now)
			return models.CounterDelta{Registered: 1}, nil
		})
		if err != nil {
			return translate(err)
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventAirlineRegistered,
			"caller", caller.String(),
			"airline", principal.String(),
			"before", "false",
			"after", "true",
		)
		if s.metrics != nil {
			s.metrics.IncrementRegistrations()
		}
		return nil
	})
}

// VoteForAirline records voter's ballot for candidate and returns the new
// count. Quorum is not checked here; collaborators compare the count with
// MinimumQuorum before calling SetAirlineRegistered.
func (s *Service) VoteForAirline(ctx context.Context, caller domain.CallerID, voter, candidate domain.PrincipalID) (count uint64, err error) {
	const op = "vote_for_airline"
	defer s.observe(op, time.Now(), &err)

	if voter.IsNil() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "voter is required")
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		var before uint64
		updated, err := s.store.Execute(ctx, candidate, func(a *models.Airline) (models.CounterDelta, error) {
			if err := a.CanVote(voter); err != nil {
				return models.CounterDelta{}, err
			}
			before = a.Ballot.Count
			return models.CounterDelta{}, a.ApplyVote(voter, now)
		})
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeVoteBookkeeping) && s.logger != nil {
				s.logger.ErrorContext(ctx, "vote bookkeeping violated",
					"candidate", candidate.String(),
					"voter", voter.String(),
				)
			}
			return translate(err)
		}
		count = updated.Ballot.Count
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventVoteCast,
			"caller", caller.String(),
			"candidate", candidate.String(),
			"voter", voter.String(),
			"before", strconv.FormatUint(before, 10),
			"after", strconv.FormatUint(count, 10),
		)
		if s.metrics != nil {
			s.metrics.IncrementVotesCast()
		}
		return nil
	})
	return count, err
}

// GetAirlineVotesCount reads the ballot count. Unknown candidates have zero
// votes.
func (s *Service) GetAirlineVotesCount(ctx context.Context, candidate domain.PrincipalID) (uint64, error) {
	var count uint64
	err := s.tx.View(ctx, func(ctx context.Context) error {
		if err := s.gate.RequireOperational(ctx); err != nil {
			return err
		}
		a, err := s.store.FindByID(ctx, candidate)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return translate(err)
		default:
			count = a.Ballot.Count
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventVotesRead,
			"candidate", candidate.String(),
			"after", strconv.FormatUint(count, 10),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Fund accepts a contribution from a registered principal. The first funding
// marks the principal funded; later ones only add to its contribution.
func (s *Service) Fund(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, value *uint256.Int) (err error) {
	const op = "fund"
	defer s.observe(op, time.Now(), &err)

	if value == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "value is required")
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.gate.RequireOperational(ctx); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		var first bool
		updated, err := s.store.Execute(ctx, principal, func(a *models.Airline) (models.CounterDelta, error) {
			if err := a.CanFund(); err != nil {
				return models.CounterDelta{}, err
			}
			if value.Lt(s.minimumFund) {
				return models.CounterDelta{}, dErrors.New(dErrors.CodeInsufficientFunds, "value is below the minimum fund")
			}
			var err error
			first, err = a.ApplyFunding(value, now)
			if err != nil {
				return models.CounterDelta{}, err
			}
			if first {
				return models.CounterDelta{Funded: 1}, nil
			}
			return models.CounterDelta{}, nil
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotRegistered, "airline is not registered")
			}
			return translate(err)
		}
		before := "funded=true"
		if first {
			before = "funded=false"
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventAirlineFunded,
			"caller", caller.String(),
			"airline", principal.String(),
			"value", value.Dec(),
			"before", before,
			"after", "funded=true contributed="+updated.Contributed.Dec(),
		)
		if s.metrics != nil {
			s.metrics.IncrementFundings(first)
		}
		return nil
	})
}

// AddFlightKey appends a flight to an existing principal. Duplicates are kept.
func (s *Service) AddFlightKey(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, key domain.FlightKey) (err error) {
	const op = "add_flight_key"
	defer s.observe(op, time.Now(), &err)

	if key.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "flight key is required")
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		updated, err := s.store.Execute(ctx, principal, func(a *models.Airline) (models.CounterDelta, error) {
			a.ApplyFlightKey(key, now)
			return models.CounterDelta{}, nil
		})
		if err != nil {
			return translate(err)
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventFlightKeyAdded,
			"caller", caller.String(),
			"airline", principal.String(),
			"flight", key.String(),
			"after", strconv.Itoa(len(updated.FlightKeys)),
		)
		return nil
	})
}

// RecordInsuranceIssued bumps a principal's insurance count. It is called by
// the insurance ledger inside its own transaction.
func (s *Service) RecordInsuranceIssued(ctx context.Context, principal domain.PrincipalID) error {
	if !tx.InTx(ctx) {
		return dErrors.New(dErrors.CodeInternal, "insurance bookkeeping must run inside a transaction")
	}
	now := requestcontext.Now(ctx)
	_, err := s.store.Execute(ctx, principal, func(a *models.Airline) (models.CounterDelta, error) {
		a.ApplyInsuranceIssued(now)
		return models.CounterDelta{}, nil
	})
	return translate(err)
}

// AirlineExists reports whether principal has a record.
func (s *Service) AirlineExists(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	a, err := s.find(ctx, principal)
	if err != nil || a == nil {
		return false, err
	}
	return a.Exists, nil
}

// AirlineRegistered is false for unknown principals.
func (s *Service) AirlineRegistered(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	a, err := s.find(ctx, principal)
	if err != nil || a == nil {
		return false, err
	}
	return a.Registered, nil
}

func (s *Service) AirlineFunded(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	a, err := s.find(ctx, principal)
	if err != nil || a == nil {
		return false, err
	}
	return a.Funded, nil
}

// GetAirline returns a principal's record with its voters.
func (s *Service) GetAirline(ctx context.Context, principal domain.PrincipalID) (*models.Details, error) {
	a, err := s.find(ctx, principal)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "airline not found")
	}
	return &models.Details{Airline: a, Voters: a.Ballot.VoterList()}, nil
}

// FlightKeys returns a principal's flights in insertion order.
func (s *Service) FlightKeys(ctx context.Context, principal domain.PrincipalID) ([]domain.FlightKey, error) {
	a, err := s.GetAirline(ctx, principal)
	if err != nil {
		return nil, err
	}
	return a.FlightKeys, nil
}

// ListAirlines returns every record sorted by principal.
func (s *Service) ListAirlines(ctx context.Context) ([]*models.Airline, error) {
	var out []*models.Airline
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.List(ctx)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Service) Counters(ctx context.Context) (models.Counters, error) {
	var c models.Counters
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.store.Counters(ctx)
		return err
	})
	if err != nil {
		return models.Counters{}, translate(err)
	}
	return c, nil
}

func (s *Service) AirlinesCount(ctx context.Context) (uint64, error) {
	c, err := s.Counters(ctx)
	return c.Airlines, err
}

func (s *Service) RegisteredCount(ctx context.Context) (uint64, error) {
	c, err := s.Counters(ctx)
	return c.Registered, err
}

func (s *Service) FundedCount(ctx context.Context) (uint64, error) {
	c, err := s.Counters(ctx)
	return c.Funded, err
}

// MinimumQuorum is registered_count / 2, rounded down.
func (s *Service) MinimumQuorum(ctx context.Context) (uint64, error) {
	c, err := s.Counters(ctx)
	return c.MinimumQuorum(), err
}

// QuorumReached reports whether candidate's votes are strictly above
// MinimumQuorum. It is advisory; nothing in the registry enforces it.
func (s *Service) QuorumReached(ctx context.Context, candidate domain.PrincipalID) (bool, error) {
	var reached bool
	err := s.tx.View(ctx, func(ctx context.Context) error {
		c, err := s.store.Counters(ctx)
		if err != nil {
			return translate(err)
		}
		a, err := s.store.FindByID(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return translate(err)
		}
		reached = a.Ballot.Count > c.MinimumQuorum()
		return nil
	})
	return reached, err
}

func (s *Service) admit(ctx context.Context, caller domain.CallerID, op string) error {
	if err := s.gate.RequireOperational(ctx); err != nil {
		return err
	}
	return s.gate.RequireAuthorizedCaller(ctx, caller, op)
}

// find returns nil without error for an unknown principal.
func (s *Service) find(ctx context.Context, principal domain.PrincipalID) (*models.Airline, error) {
	var a *models.Airline
	err := s.tx.View(ctx, func(ctx context.Context) error {
		found, err := s.store.FindByID(ctx, principal)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return translate(err)
		}
		a = found
		return nil
	})
	return a, err
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(op, start)
	if *errp != nil {
		s.metrics.IncrementRejected(op, string(dErrors.CodeOf(*errp)))
	}
}

// translate maps store facts to domain errors and passes domain errors through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "airline not found")
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return dErrors.New(dErrors.CodeAlreadyExists, "airline already exists")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "registry store failure")
}
