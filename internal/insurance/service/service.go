// Package service implements the insurance ledger: building cover for a
// ticket, purchase, the crediting pass that settles a flight, and payouts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"flightsurety/internal/identity"
	"flightsurety/internal/insurance/metrics"
	"flightsurety/internal/insurance/models"
	"flightsurety/internal/insurance/ports"
	"flightsurety/internal/insurance/store"
	"flightsurety/internal/platform/observability"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, rec *models.Insurance) error
	FindByKey(ctx context.Context, key domain.InsuranceKey) (*models.Insurance, error)
	Execute(ctx context.Context, key domain.InsuranceKey, fn func(*models.Insurance) error) (*models.Insurance, error)
	ExecuteFlight(ctx context.Context, flight domain.FlightKey, fn func([]*models.Insurance) error) ([]*models.Insurance, error)
	ListByFlight(ctx context.Context, flight domain.FlightKey) ([]*models.Insurance, error)
	ListByPassenger(ctx context.Context, passenger domain.PrincipalID) ([]*models.Insurance, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates the insurance ledger.
type Service struct {
	store     Store
	airlines  ports.AirlineRegistry
	gate      ports.Gate
	tx        TxRunner
	settler   ports.Settler
	logger    *slog.Logger
	publisher observability.Publisher
	metrics   *metrics.Metrics
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

// WithSettler enables Withdraw.
func WithSettler(settler ports.Settler) Option {
	return func(s *Service) {
		s.settler = settler
	}
}

func New(st Store, airlines ports.AirlineRegistry, gate ports.Gate, txRunner TxRunner, opts ...Option) (*Service, error) {
	if st == nil || airlines == nil || gate == nil || txRunner == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "store, airline registry, gate and tx runner are required")
	}
	s := &Service{store: st, airlines: airlines, gate: gate, tx: txRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BuildFlightInsurance creates the record for (flight, ticket), waiting for
// its buyer. An occupied slot is rejected rather than reset.
func (s *Service) BuildFlightInsurance(ctx context.Context, caller domain.CallerID, airline domain.PrincipalID, flight domain.FlightKey, ticket uint64) (key domain.InsuranceKey, err error) {
	const op = "build_flight_insurance"
	defer s.observe(op, time.Now(), &err)

	if flight.IsNil() {
		return domain.InsuranceKey{}, dErrors.New(dErrors.CodeInvalidInput, "flight key is required")
	}
	key = identity.InsuranceKey(flight, ticket)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		exists, err := s.airlines.AirlineExists(ctx, airline)
		if err != nil {
			return err
		}
		if !exists {
			return dErrors.New(dErrors.CodeNotFound, "airline not found")
		}

		rec := models.NewInsurance(key, flight, ticket, airline, requestcontext.Now(ctx))
		if err := s.store.Create(ctx, rec); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeAlreadyExists, "insurance already exists for this ticket")
			}
			return translate(err)
		}
		if err := s.airlines.RecordInsuranceIssued(ctx, airline); err != nil {
			return err
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventInsuranceBuilt,
			"caller", caller.String(),
			"insurance_key", key.String(),
			"flight", flight.String(),
			"airline", airline.String(),
			"ticket", strconv.FormatUint(ticket, 10),
			"before", models.StateNotExist.String(),
			"after", models.StateWaitingForBuyer.String(),
		)
		if s.metrics != nil {
			s.metrics.IncrementBuilt()
		}
		return nil
	})
	if err != nil {
		return domain.InsuranceKey{}, err
	}
	return key, nil
}

// PurchaseInsurance assigns buyer and value to a record waiting for a buyer.
func (s *Service) PurchaseInsurance(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, buyer domain.PrincipalID, value *uint256.Int) (err error) {
	const op = "purchase_insurance"
	defer s.observe(op, time.Now(), &err)

	if buyer.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "buyer is required")
	}
	if value == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "value is required")
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		_, err := s.store.Execute(ctx, key, func(rec *models.Insurance) error {
			if err := rec.CanPurchase(); err != nil {
				return err
			}
			rec.ApplyPurchase(buyer, value, now)
			return nil
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotPurchasable, "insurance does not exist")
			}
			return translate(err)
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventInsurancePurchased,
			"caller", caller.String(),
			"insurance_key", key.String(),
			"buyer", buyer.String(),
			"value", value.Dec(),
			"before", models.StateWaitingForBuyer.String(),
			"after", models.StateBought.String(),
		)
		if s.metrics != nil {
			s.metrics.IncrementPurchased()
		}
		return nil
	})
}

// CreditInsurees settles every record of a flight. Outcomes are computed for
// the whole flight first; if any of them fails nothing is applied.
func (s *Service) CreditInsurees(ctx context.Context, caller domain.CallerID, flight domain.FlightKey, ratePercent uint64) (summary models.CreditSummary, err error) {
	const op = "credit_insurees"
	defer s.observe(op, time.Now(), &err)

	summary.FlightKey = flight
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		var credits []models.Credit
		_, err := s.store.ExecuteFlight(ctx, flight, func(recs []*models.Insurance) error {
			pending := make(map[int]models.Credit, len(recs))
			for i, rec := range recs {
				c, ok, err := rec.ComputeCredit(ratePercent)
				if err != nil {
					return err
				}
				if ok {
					pending[i] = c
				}
			}
			for i, rec := range recs {
				c, ok := pending[i]
				if !ok {
					summary.Skipped++
					continue
				}
				rec.ApplyCredit(c, now)
				credits = append(credits, c)
				if c.After == models.StatePassed {
					summary.Passed++
				} else {
					summary.Expired++
				}
			}
			return nil
		})
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) && s.logger != nil {
				s.logger.ErrorContext(ctx, "crediting aborted",
					"flight", flight.String(),
					"rate", ratePercent,
					"error", err,
				)
			}
			return translate(err)
		}

		for _, c := range credits {
			observability.LogAudit(ctx, s.logger, s.publisher, audit.EventInsuranceCredited,
				"caller", caller.String(),
				"insurance_key", c.Key.String(),
				"flight", flight.String(),
				"value", c.Value.Dec(),
				"before", c.Before.String(),
				"after", c.After.String(),
			)
		}
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventFlightCredited,
			"caller", caller.String(),
			"flight_key", flight.String(),
			"rate", strconv.FormatUint(ratePercent, 10),
			"after", "passed="+strconv.Itoa(summary.Passed)+" expired="+strconv.Itoa(summary.Expired)+" skipped="+strconv.Itoa(summary.Skipped),
		)
		if s.metrics != nil {
			s.metrics.AddCredited(models.StatePassed.String(), summary.Passed)
			s.metrics.AddCredited(models.StateExpired.String(), summary.Expired)
		}
		return nil
	})
	if err != nil {
		return models.CreditSummary{FlightKey: flight}, err
	}
	return summary, nil
}

// Withdraw marks a credited record paid and then hands its value to the
// settler. A failed transfer clears the paid flag again.
func (s *Service) Withdraw(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, passenger domain.PrincipalID) (amount *uint256.Int, err error) {
	const op = "withdraw"
	defer s.observe(op, time.Now(), &err)

	if s.settler == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "payouts are not configured")
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admit(ctx, caller, op); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		rec, err := s.store.Execute(ctx, key, func(r *models.Insurance) error {
			if err := r.CanPay(passenger); err != nil {
				return err
			}
			r.ApplyPayment(now)
			return nil
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotPayable, "insurance does not exist")
			}
			return translate(err)
		}
		if err := s.settler.Transfer(ctx, passenger, rec.Value, key); err != nil {
			if _, revertErr := s.store.Execute(ctx, key, func(r *models.Insurance) error {
				r.RevertPayment(now)
				return nil
			}); revertErr != nil {
				return dErrors.Wrap(errors.Join(err, revertErr), dErrors.CodeInternal, "payout transfer failed and paid flag could not be restored")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "payout transfer failed")
		}
		amount = new(uint256.Int).Set(rec.Value)
		observability.LogAudit(ctx, s.logger, s.publisher, audit.EventPayoutRequested,
			"caller", caller.String(),
			"insurance_key", key.String(),
			"passenger", passenger.String(),
			"value", amount.Dec(),
			"before", "paid=false",
			"after", "paid=true",
		)
		if s.metrics != nil {
			s.metrics.IncrementPayouts()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (s *Service) GetInsurance(ctx context.Context, key domain.InsuranceKey) (*models.Insurance, error) {
	var rec *models.Insurance
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.store.FindByKey(ctx, key)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return rec, nil
}

// ListByFlight returns a flight's records in build order.
func (s *Service) ListByFlight(ctx context.Context, flight domain.FlightKey) ([]*models.Insurance, error) {
	var recs []*models.Insurance
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.store.ListByFlight(ctx, flight)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return recs, nil
}

// ListByPassenger returns a passenger's records in purchase order.
func (s *Service) ListByPassenger(ctx context.Context, passenger domain.PrincipalID) ([]*models.Insurance, error) {
	var recs []*models.Insurance
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.store.ListByPassenger(ctx, passenger)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return recs, nil
}

func (s *Service) admit(ctx context.Context, caller domain.CallerID, op string) error {
	if err := s.gate.RequireOperational(ctx); err != nil {
		return err
	}
	return s.gate.RequireAuthorizedCaller(ctx, caller, op)
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

func translate(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "insurance not found")
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return dErrors.New(dErrors.CodeAlreadyExists, "insurance already exists")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "insurance store failure")
}
