// Package ledger assembles the access gate, the airline registry and the
// insurance ledger behind one boundary. Every entry point collaborators call
// is a method here; each runs as a traced, serialized operation.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"flightsurety/internal/access"
	"flightsurety/internal/access/store/allowlist"
	airlinemetrics "flightsurety/internal/airline/metrics"
	airlinemodels "flightsurety/internal/airline/models"
	airlinesvc "flightsurety/internal/airline/service"
	airlinestore "flightsurety/internal/airline/store"
	insurancemetrics "flightsurety/internal/insurance/metrics"
	insurancemodels "flightsurety/internal/insurance/models"
	"flightsurety/internal/insurance/ports"
	insurancesvc "flightsurety/internal/insurance/service"
	insurancestore "flightsurety/internal/insurance/store"
	"flightsurety/internal/platform/observability"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/tx"
)

const tracerName = "flightsurety/ledger"

// Ledger is the flight-surety core.
type Ledger struct {
	tx        *tx.Serializer
	gate      *access.Gate
	airlines  *airlinesvc.Service
	insurance *insurancesvc.Service
	tracer    oteltrace.Tracer
	logger    *slog.Logger
	publisher observability.Publisher

	bootMu       sync.Mutex
	bootstrapped bool
}

type options struct {
	allowlist   access.AllowlistStore
	enforce     bool
	minimumFund *uint256.Int
	settler     ports.Settler
	logger      *slog.Logger
	publisher   observability.Publisher
	metrics     bool
	txTimeout   time.Duration
}

type Option func(*options)

// WithAllowlistStore replaces the in-memory allow-list.
func WithAllowlistStore(store access.AllowlistStore) Option {
	return func(o *options) {
		o.allowlist = store
	}
}

// WithEnforcedAllowlist makes the trusted-caller check reject unknown callers.
func WithEnforcedAllowlist(enforce bool) Option {
	return func(o *options) {
		o.enforce = enforce
	}
}

func WithMinimumFund(min *uint256.Int) Option {
	return func(o *options) {
		o.minimumFund = min
	}
}

// WithSettler enables payouts.
func WithSettler(settler ports.Settler) Option {
	return func(o *options) {
		o.settler = settler
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventPublisher sets where ledger events go.
func WithEventPublisher(publisher observability.Publisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

// WithTxTimeout bounds every operation whose context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(o *options) {
		o.txTimeout = d
	}
}

// WithMetrics registers the module metrics with the default prometheus
// registry. Call it at most once per process.
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// New wires a ledger owned by owner. Call Bootstrap before serving.
func New(owner domain.PrincipalID, opts ...Option) (*Ledger, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.allowlist == nil {
		o.allowlist = allowlist.NewInMemory()
	}

	serializer := tx.NewSerializer(tx.WithTimeout(o.txTimeout))
	gate, err := access.New(owner, o.allowlist, serializer,
		access.WithLogger(o.logger),
		access.WithAuditPublisher(o.publisher),
		access.WithEnforcedAllowlist(o.enforce),
	)
	if err != nil {
		return nil, err
	}

	airlineOpts := []airlinesvc.Option{
		airlinesvc.WithLogger(o.logger),
		airlinesvc.WithAuditPublisher(o.publisher),
		airlinesvc.WithMinimumFund(o.minimumFund),
	}
	insuranceOpts := []insurancesvc.Option{
		insurancesvc.WithLogger(o.logger),
		insurancesvc.WithAuditPublisher(o.publisher),
	}
	if o.settler != nil {
		insuranceOpts = append(insuranceOpts, insurancesvc.WithSettler(o.settler))
	}
	if o.metrics {
		airlineOpts = append(airlineOpts, airlinesvc.WithMetrics(airlinemetrics.New()))
		insuranceOpts = append(insuranceOpts, insurancesvc.WithMetrics(insurancemetrics.New()))
	}

	airlines, err := airlinesvc.New(airlinestore.New(), gate, serializer, airlineOpts...)
	if err != nil {
		return nil, err
	}
	insurance, err := insurancesvc.New(insurancestore.New(), airlines, gate, serializer, insuranceOpts...)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		tx:        serializer,
		gate:      gate,
		airlines:  airlines,
		insurance: insurance,
		tracer:    otel.Tracer(tracerName),
		logger:    o.logger,
		publisher: o.publisher,
	}, nil
}

// Bootstrap initializes the registry with its first airline and seeds the
// allow-list. It succeeds exactly once; a failed attempt leaves nothing behind
// and may be retried.
func (l *Ledger) Bootstrap(ctx context.Context, principal domain.PrincipalID, callers ...domain.CallerID) (err error) {
	ctx, span := l.start(ctx, "Ledger.Bootstrap", attribute.Stringer("airline", principal))
	defer func() { l.end(span, err) }()

	l.bootMu.Lock()
	defer l.bootMu.Unlock()
	if l.bootstrapped {
		return dErrors.New(dErrors.CodeAlreadyExists, "ledger is already bootstrapped")
	}
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bootstrap principal is required")
	}
	err = l.tx.RunInTx(ctx, func(ctx context.Context) error {
		undo, err := l.gate.Bootstrap(ctx, callers)
		if err != nil {
			return err
		}
		if err := l.airlines.Bootstrap(ctx, principal); err != nil {
			undo(ctx)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.bootstrapped = true
	return nil
}

func (l *Ledger) IsOperational(ctx context.Context) bool {
	return l.gate.IsOperational(ctx)
}

func (l *Ledger) SetOperational(ctx context.Context, caller domain.CallerID, mode bool) (err error) {
	ctx, span := l.start(ctx, "Ledger.SetOperational", attribute.Bool("mode", mode))
	defer func() { l.end(span, err) }()
	return l.gate.SetOperational(ctx, caller, mode)
}

func (l *Ledger) AuthorizeCaller(ctx context.Context, caller, id domain.CallerID) (err error) {
	ctx, span := l.start(ctx, "Ledger.AuthorizeCaller", attribute.Stringer("authorized", id))
	defer func() { l.end(span, err) }()
	return l.gate.AuthorizeCaller(ctx, caller, id)
}

func (l *Ledger) IsCallerAuthorized(ctx context.Context, id domain.CallerID) (bool, error) {
	return l.gate.IsCallerAuthorized(ctx, id)
}

func (l *Ledger) AuthorizedCallers(ctx context.Context) ([]domain.CallerID, error) {
	return l.gate.AuthorizedCallers(ctx)
}

func (l *Ledger) RegisterAirline(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, registered bool) (err error) {
	ctx, span := l.start(ctx, "Ledger.RegisterAirline",
		attribute.Stringer("airline", principal),
		attribute.Bool("registered", registered),
	)
	defer func() { l.end(span, err) }()
	return l.airlines.RegisterAirline(ctx, caller, principal, registered)
}

func (l *Ledger) SetAirlineRegistered(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID) (err error) {
	ctx, span := l.start(ctx, "Ledger.SetAirlineRegistered", attribute.Stringer("airline", principal))
	defer func() { l.end(span, err) }()
	return l.airlines.SetAirlineRegistered(ctx, caller, principal)
}

func (l *Ledger) VoteForAirline(ctx context.Context, caller domain.CallerID, voter, candidate domain.PrincipalID) (count uint64, err error) {
	ctx, span := l.start(ctx, "Ledger.VoteForAirline",
		attribute.Stringer("voter", voter),
		attribute.Stringer("candidate", candidate),
	)
	defer func() { l.end(span, err) }()
	return l.airlines.VoteForAirline(ctx, caller, voter, candidate)
}

func (l *Ledger) GetVotesCount(ctx context.Context, candidate domain.PrincipalID) (uint64, error) {
	return l.airlines.GetAirlineVotesCount(ctx, candidate)
}

func (l *Ledger) Fund(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, value *uint256.Int) (err error) {
	ctx, span := l.start(ctx, "Ledger.Fund", attribute.Stringer("airline", principal))
	defer func() { l.end(span, err) }()
	return l.airlines.Fund(ctx, caller, principal, value)
}

// Receive is the fallback path for a bare value transfer: the sender funds
// itself. It is an ordinary top-level operation, so a transfer arriving while
// another operation is in flight on the same context is rejected.
func (l *Ledger) Receive(ctx context.Context, caller domain.CallerID, value *uint256.Int) (err error) {
	ctx, span := l.start(ctx, "Ledger.Receive", attribute.Stringer("sender", caller))
	defer func() { l.end(span, err) }()

	if err := l.airlines.Fund(ctx, caller, caller.Principal(), value); err != nil {
		return err
	}
	observability.LogAudit(ctx, l.logger, l.publisher, audit.EventFundsReceived,
		"caller", caller.String(),
		"airline", caller.Principal().String(),
		"value", valueString(value),
	)
	return nil
}

func (l *Ledger) AddFlightKey(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, key domain.FlightKey) (err error) {
	ctx, span := l.start(ctx, "Ledger.AddFlightKey",
		attribute.Stringer("airline", principal),
		attribute.Stringer("flight", key),
	)
	defer func() { l.end(span, err) }()
	return l.airlines.AddFlightKey(ctx, caller, principal, key)
}

func (l *Ledger) BuildFlightInsurance(ctx context.Context, caller domain.CallerID, airline domain.PrincipalID, flight domain.FlightKey, ticket uint64) (key domain.InsuranceKey, err error) {
	ctx, span := l.start(ctx, "Ledger.BuildFlightInsurance",
		attribute.Stringer("airline", airline),
		attribute.Stringer("flight", flight),
		attribute.Int64("ticket", int64(ticket)),
	)
	defer func() { l.end(span, err) }()
	return l.insurance.BuildFlightInsurance(ctx, caller, airline, flight, ticket)
}

func (l *Ledger) PurchaseInsurance(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, buyer domain.PrincipalID, value *uint256.Int) (err error) {
	ctx, span := l.start(ctx, "Ledger.PurchaseInsurance",
		attribute.Stringer("insurance", key),
		attribute.Stringer("buyer", buyer),
	)
	defer func() { l.end(span, err) }()
	return l.insurance.PurchaseInsurance(ctx, caller, key, buyer, value)
}

func (l *Ledger) CreditInsurees(ctx context.Context, caller domain.CallerID, flight domain.FlightKey, ratePercent uint64) (summary insurancemodels.CreditSummary, err error) {
	ctx, span := l.start(ctx, "Ledger.CreditInsurees",
		attribute.Stringer("flight", flight),
		attribute.Int64("rate_percent", int64(ratePercent)),
	)
	defer func() { l.end(span, err) }()
	return l.insurance.CreditInsurees(ctx, caller, flight, ratePercent)
}

func (l *Ledger) Withdraw(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, passenger domain.PrincipalID) (amount *uint256.Int, err error) {
	ctx, span := l.start(ctx, "Ledger.Withdraw",
		attribute.Stringer("insurance", key),
		attribute.Stringer("passenger", passenger),
	)
	defer func() { l.end(span, err) }()
	return l.insurance.Withdraw(ctx, caller, key, passenger)
}

func (l *Ledger) AirlineExists(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	return l.airlines.AirlineExists(ctx, principal)
}

func (l *Ledger) AirlineRegistered(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	return l.airlines.AirlineRegistered(ctx, principal)
}

func (l *Ledger) AirlineFunded(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	return l.airlines.AirlineFunded(ctx, principal)
}

func (l *Ledger) GetAirline(ctx context.Context, principal domain.PrincipalID) (*airlinemodels.Details, error) {
	return l.airlines.GetAirline(ctx, principal)
}

func (l *Ledger) ListAirlines(ctx context.Context) ([]*airlinemodels.Airline, error) {
	return l.airlines.ListAirlines(ctx)
}

func (l *Ledger) Counters(ctx context.Context) (airlinemodels.Counters, error) {
	return l.airlines.Counters(ctx)
}

func (l *Ledger) AirlinesCount(ctx context.Context) (uint64, error) {
	return l.airlines.AirlinesCount(ctx)
}

func (l *Ledger) RegisteredCount(ctx context.Context) (uint64, error) {
	return l.airlines.RegisteredCount(ctx)
}

func (l *Ledger) FundedCount(ctx context.Context) (uint64, error) {
	return l.airlines.FundedCount(ctx)
}

func (l *Ledger) MinimumQuorum(ctx context.Context) (uint64, error) {
	return l.airlines.MinimumQuorum(ctx)
}

func (l *Ledger) QuorumReached(ctx context.Context, candidate domain.PrincipalID) (bool, error) {
	return l.airlines.QuorumReached(ctx, candidate)
}

func (l *Ledger) MinimumFund() *uint256.Int {
	return l.airlines.MinimumFund()
}

func (l *Ledger) FlightKeys(ctx context.Context, principal domain.PrincipalID) ([]domain.FlightKey, error) {
	return l.airlines.FlightKeys(ctx, principal)
}

func (l *Ledger) GetInsurance(ctx context.Context, key domain.InsuranceKey) (*insurancemodels.Insurance, error) {
	return l.insurance.GetInsurance(ctx, key)
}

func (l *Ledger) ListByFlight(ctx context.Context, flight domain.FlightKey) ([]*insurancemodels.Insurance, error) {
	return l.insurance.ListByFlight(ctx, flight)
}

func (l *Ledger) ListByPassenger(ctx context.Context, passenger domain.PrincipalID) ([]*insurancemodels.Insurance, error) {
	return l.insurance.ListByPassenger(ctx, passenger)
}

func (l *Ledger) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return l.tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

func (l *Ledger) end(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func valueString(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}
