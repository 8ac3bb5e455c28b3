package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	airlinemodels "flightsurety/internal/airline/models"
	insurancemodels "flightsurety/internal/insurance/models"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	"flightsurety/pkg/platform/httputil"
	request "flightsurety/pkg/platform/middleware/request"
	"flightsurety/pkg/requestcontext"
)

// LedgerService is the ledger boundary the handlers drive.
type LedgerService interface {
	IsOperational(ctx context.Context) bool
	SetOperational(ctx context.Context, caller domain.CallerID, mode bool) error
	AuthorizeCaller(ctx context.Context, caller, id domain.CallerID) error
	IsCallerAuthorized(ctx context.Context, id domain.CallerID) (bool, error)
	AuthorizedCallers(ctx context.Context) ([]domain.CallerID, error)

	RegisterAirline(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, registered bool) error
	SetAirlineRegistered(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID) error
	VoteForAirline(ctx context.Context, caller domain.CallerID, voter, candidate domain.PrincipalID) (uint64, error)
	GetVotesCount(ctx context.Context, candidate domain.PrincipalID) (uint64, error)
	QuorumReached(ctx context.Context, candidate domain.PrincipalID) (bool, error)
	Fund(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, value *uint256.Int) error
	Receive(ctx context.Context, caller domain.CallerID, value *uint256.Int) error
	AddFlightKey(ctx context.Context, caller domain.CallerID, principal domain.PrincipalID, key domain.FlightKey) error
	GetAirline(ctx context.Context, principal domain.PrincipalID) (*airlinemodels.Details, error)
	ListAirlines(ctx context.Context) ([]*airlinemodels.Airline, error)
	FlightKeys(ctx context.Context, principal domain.PrincipalID) ([]domain.FlightKey, error)
	Counters(ctx context.Context) (airlinemodels.Counters, error)
	MinimumFund() *uint256.Int

	BuildFlightInsurance(ctx context.Context, caller domain.CallerID, airline domain.PrincipalID, flight domain.FlightKey, ticket uint64) (domain.InsuranceKey, error)
	PurchaseInsurance(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, buyer domain.PrincipalID, value *uint256.Int) error
	CreditInsurees(ctx context.Context, caller domain.CallerID, flight domain.FlightKey, ratePercent uint64) (insurancemodels.CreditSummary, error)
	Withdraw(ctx context.Context, caller domain.CallerID, key domain.InsuranceKey, passenger domain.PrincipalID) (*uint256.Int, error)
	GetInsurance(ctx context.Context, key domain.InsuranceKey) (*insurancemodels.Insurance, error)
	ListByFlight(ctx context.Context, flight domain.FlightKey) ([]*insurancemodels.Insurance, error)
	ListByPassenger(ctx context.Context, passenger domain.PrincipalID) ([]*insurancemodels.Insurance, error)
}

// BalanceReader exposes settled payouts per passenger.
type BalanceReader interface {
	Balance(ctx context.Context, passenger domain.PrincipalID) *uint256.Int
}

// LedgerHandler serves the ledger entry points.
type LedgerHandler struct {
	ledger   LedgerService
	balances BalanceReader
	logger   *slog.Logger
}

func NewLedgerHandler(ledger LedgerService, balances BalanceReader, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, balances: balances, logger: logger}
}

// RegisterPublic mounts the read-only routes.
func (h *LedgerHandler) RegisterPublic(r chi.Router) {
	r.Get("/operational", h.handleGetOperational)
	r.Get("/callers", h.handleListCallers)
	r.Get("/callers/{caller}", h.handleGetCaller)
	r.Get("/registry", h.handleRegistry)

	r.Get("/airlines", h.handleListAirlines)
	r.Get("/airlines/{principal}", h.handleGetAirline)
	r.Get("/airlines/{principal}/votes", h.handleGetVotes)
	r.Get("/airlines/{principal}/flights", h.handleGetFlightKeys)

	r.Get("/flights/{flight}/insurances", h.handleListByFlight)
	r.Get("/insurances/{key}", h.handleGetInsurance)
	r.Get("/passengers/{principal}/insurances", h.handleListByPassenger)
	r.Get("/passengers/{principal}/balance", h.handleBalance)
}

// RegisterAuthenticated mounts the mutating routes. They expect the caller
// identity in the request context.
func (h *LedgerHandler) RegisterAuthenticated(r chi.Router) {
	r.Put("/operational", h.handleSetOperational)
	r.Post("/callers", h.handleAuthorizeCaller)

	r.Post("/airlines", h.handleRegisterAirline)
	r.Post("/airlines/{principal}/registration", h.handleSetRegistered)
	r.Post("/airlines/{principal}/votes", h.handleVote)
	r.Post("/airlines/{principal}/funding", h.handleFund)
	r.Post("/airlines/{principal}/flights", h.handleAddFlightKey)
	r.Post("/funds", h.handleReceive)

	r.Post("/flights/{flight}/insurances", h.handleBuildInsurance)
	r.Post("/flights/{flight}/credits", h.handleCredit)
	r.Post("/insurances/{key}/purchase", h.handlePurchase)
	r.Post("/insurances/{key}/withdrawal", h.handleWithdraw)
}

func (h *LedgerHandler) handleGetOperational(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"operational": h.ledger.IsOperational(r.Context())})
}

func (h *LedgerHandler) handleSetOperational(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req SetOperationalRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := req.Parse()
	if err != nil {
		h.fail(w, r, "set operational", err)
		return
	}
	if err := h.ledger.SetOperational(r.Context(), caller, mode); err != nil {
		h.fail(w, r, "set operational", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"operational": mode})
}

func (h *LedgerHandler) handleAuthorizeCaller(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req AuthorizeCallerRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := req.Parse()
	if err != nil {
		h.fail(w, r, "authorize caller", err)
		return
	}
	if err := h.ledger.AuthorizeCaller(r.Context(), caller, id); err != nil {
		h.fail(w, r, "authorize caller", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleListCallers(w http.ResponseWriter, r *http.Request) {
	callers, err := h.ledger.AuthorizedCallers(r.Context())
	if err != nil {
		h.fail(w, r, "list callers", err)
		return
	}
	out := make([]string, 0, len(callers))
	for _, c := range callers {
		out = append(out, c.String())
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"callers": out})
}

func (h *LedgerHandler) handleGetCaller(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCallerID(chi.URLParam(r, "caller"))
	if err != nil {
		h.fail(w, r, "get caller", err)
		return
	}
	authorized, err := h.ledger.IsCallerAuthorized(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get caller", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"caller": id.String(), "authorized": authorized})
}

func (h *LedgerHandler) handleRegistry(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Counters(r.Context())
	if err != nil {
		h.fail(w, r, "registry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RegistryResponse{
		Airlines:      c.Airlines,
		Registered:    c.Registered,
		Funded:        c.Funded,
		MinimumQuorum: c.MinimumQuorum(),
		MinimumFund:   amountString(h.ledger.MinimumFund()),
	})
}

func (h *LedgerHandler) handleRegisterAirline(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req RegisterAirlineRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, err := req.Parse()
	if err != nil {
		h.fail(w, r, "register airline", err)
		return
	}
	if err := h.ledger.RegisterAirline(r.Context(), caller, principal, req.Registered); err != nil {
		h.fail(w, r, "register airline", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"principal": principal.String(), "registered": req.Registered})
}

func (h *LedgerHandler) handleSetRegistered(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	if err := h.ledger.SetAirlineRegistered(r.Context(), caller, principal); err != nil {
		h.fail(w, r, "set registered", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	candidate, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	var req VoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	voter, err := req.Parse()
	if err != nil {
		h.fail(w, r, "vote", err)
		return
	}
	count, err := h.ledger.VoteForAirline(r.Context(), caller, voter, candidate)
	if err != nil {
		h.fail(w, r, "vote", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"votes": count})
}

func (h *LedgerHandler) handleGetVotes(w http.ResponseWriter, r *http.Request) {
	candidate, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	ctx := r.Context()
	count, err := h.ledger.GetVotesCount(ctx, candidate)
	if err != nil {
		h.fail(w, r, "get votes", err)
		return
	}
	reached, err := h.ledger.QuorumReached(ctx, candidate)
	if err != nil {
		h.fail(w, r, "get votes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"votes": count, "quorum_reached": reached})
}

func (h *LedgerHandler) handleFund(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	var req FundRequest
	if !h.decode(w, r, &req) {
		return
	}
	value, err := req.Parse()
	if err != nil {
		h.fail(w, r, "fund", err)
		return
	}
	if err := h.ledger.Fund(r.Context(), caller, principal, value); err != nil {
		h.fail(w, r, "fund", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleReceive(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req FundRequest
	if !h.decode(w, r, &req) {
		return
	}
	value, err := req.Parse()
	if err != nil {
		h.fail(w, r, "receive", err)
		return
	}
	if err := h.ledger.Receive(r.Context(), caller, value); err != nil {
		h.fail(w, r, "receive", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleAddFlightKey(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	var req AddFlightKeyRequest
	if !h.decode(w, r, &req) {
		return
	}
	key, err := req.Parse()
	if err != nil {
		h.fail(w, r, "add flight key", err)
		return
	}
	if err := h.ledger.AddFlightKey(r.Context(), caller, principal, key); err != nil {
		h.fail(w, r, "add flight key", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleGetAirline(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	details, err := h.ledger.GetAirline(r.Context(), principal)
	if err != nil {
		h.fail(w, r, "get airline", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAirlineResponse(details.Airline, details.Voters))
}

func (h *LedgerHandler) handleListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := h.ledger.ListAirlines(r.Context())
	if err != nil {
		h.fail(w, r, "list airlines", err)
		return
	}
	out := make([]AirlineResponse, 0, len(airlines))
	for _, a := range airlines {
		out = append(out, toAirlineResponse(a, nil))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]AirlineResponse{"airlines": out})
}

func (h *LedgerHandler) handleGetFlightKeys(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	keys, err := h.ledger.FlightKeys(r.Context(), principal)
	if err != nil {
		h.fail(w, r, "flight keys", err)
		return
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"flight_keys": out})
}

func (h *LedgerHandler) handleBuildInsurance(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	flight, ok := h.flightParam(w, r)
	if !ok {
		return
	}
	var req BuildInsuranceRequest
	if !h.decode(w, r, &req) {
		return
	}
	airline, ticket, err := req.Parse()
	if err != nil {
		h.fail(w, r, "build insurance", err)
		return
	}
	key, err := h.ledger.BuildFlightInsurance(r.Context(), caller, airline, flight, ticket)
	if err != nil {
		h.fail(w, r, "build insurance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"insurance_key": key.String()})
}

func (h *LedgerHandler) handleCredit(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	flight, ok := h.flightParam(w, r)
	if !ok {
		return
	}
	var req CreditRequest
	if !h.decode(w, r, &req) {
		return
	}
	rate, err := req.Parse()
	if err != nil {
		h.fail(w, r, "credit insurees", err)
		return
	}
	summary, err := h.ledger.CreditInsurees(r.Context(), caller, flight, rate)
	if err != nil {
		h.fail(w, r, "credit insurees", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *LedgerHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := h.insuranceParam(w, r)
	if !ok {
		return
	}
	var req PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	buyer, value, err := req.Parse()
	if err != nil {
		h.fail(w, r, "purchase insurance", err)
		return
	}
	if err := h.ledger.PurchaseInsurance(r.Context(), caller, key, buyer, value); err != nil {
		h.fail(w, r, "purchase insurance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := h.insuranceParam(w, r)
	if !ok {
		return
	}
	var req WithdrawRequest
	if !h.decode(w, r, &req) {
		return
	}
	passenger, err := req.Parse()
	if err != nil {
		h.fail(w, r, "withdraw", err)
		return
	}
	amount, err := h.ledger.Withdraw(r.Context(), caller, key, passenger)
	if err != nil {
		h.fail(w, r, "withdraw", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"amount": amountString(amount)})
}

func (h *LedgerHandler) handleGetInsurance(w http.ResponseWriter, r *http.Request) {
	key, ok := h.insuranceParam(w, r)
	if !ok {
		return
	}
	record, err := h.ledger.GetInsurance(r.Context(), key)
	if err != nil {
		h.fail(w, r, "get insurance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInsuranceResponse(record))
}

func (h *LedgerHandler) handleListByFlight(w http.ResponseWriter, r *http.Request) {
	flight, ok := h.flightParam(w, r)
	if !ok {
		return
	}
	records, err := h.ledger.ListByFlight(r.Context(), flight)
	if err != nil {
		h.fail(w, r, "list by flight", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]InsuranceResponse{"insurances": toInsuranceList(records)})
}

func (h *LedgerHandler) handleListByPassenger(w http.ResponseWriter, r *http.Request) {
	passenger, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	records, err := h.ledger.ListByPassenger(r.Context(), passenger)
	if err != nil {
		h.fail(w, r, "list by passenger", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]InsuranceResponse{"insurances": toInsuranceList(records)})
}

func (h *LedgerHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	passenger, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	if h.balances == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "balances are not tracked by this deployment"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"passenger": passenger.String(),
		"balance":   amountString(h.balances.Balance(r.Context(), passenger)),
	})
}

func (h *LedgerHandler) requireCaller(w http.ResponseWriter, r *http.Request) (domain.CallerID, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok {
		// RequireCaller middleware must run before these routes.
		h.logger.ErrorContext(r.Context(), "caller missing from context despite auth middleware",
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller identity required"))
		return domain.CallerID{}, false
	}
	return caller, true
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", request.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *LedgerHandler) principalParam(w http.ResponseWriter, r *http.Request, name string) (domain.PrincipalID, bool) {
	id, err := domain.ParsePrincipalID(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.PrincipalID{}, false
	}
	return id, true
}

func (h *LedgerHandler) flightParam(w http.ResponseWriter, r *http.Request) (domain.FlightKey, bool) {
	key, err := domain.ParseFlightKey(chi.URLParam(r, "flight"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.FlightKey{}, false
	}
	return key, true
}

func (h *LedgerHandler) insuranceParam(w http.ResponseWriter, r *http.Request) (domain.InsuranceKey, bool) {
	key, err := domain.ParseInsuranceKey(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.InsuranceKey{}, false
	}
	return key, true
}

// fail logs a rejected operation at a level matching its category and
// writes the error envelope.
func (h *LedgerHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if cat := dErrors.CategoryOf(err); cat == dErrors.CategoryInternal || cat == dErrors.CategoryInvariantViolation {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "ledger operation rejected",
		"operation", operation,
		"code", string(dErrors.CodeOf(err)),
		"request_id", request.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
