package httptransport

import (
	"strings"
	"time"

	"github.com/holiman/uint256"

	airlinemodels "flightsurety/internal/airline/models"
	insurancemodels "flightsurety/internal/insurance/models"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
)

// Requests carry addresses, keys and amounts as strings; Parse turns them
// into domain values and reports the first malformed field.

type SetOperationalRequest struct {
	Operational *bool `json:"operational"`
}

func (r SetOperationalRequest) Parse() (bool, error) {
	if r.Operational == nil {
		return false, dErrors.New(dErrors.CodeValidation, "operational is required")
	}
	return *r.Operational, nil
}

type AuthorizeCallerRequest struct {
	Caller string `json:"caller"`
}

func (r AuthorizeCallerRequest) Parse() (domain.CallerID, error) {
	return domain.ParseCallerID(r.Caller)
}

type RegisterAirlineRequest struct {
	Principal  string `json:"principal"`
	Registered bool   `json:"registered"`
}

func (r RegisterAirlineRequest) Parse() (domain.PrincipalID, error) {
	return domain.ParsePrincipalID(r.Principal)
}

type VoteRequest struct {
	Voter string `json:"voter"`
}

func (r VoteRequest) Parse() (domain.PrincipalID, error) {
	return domain.ParsePrincipalID(r.Voter)
}

type FundRequest struct {
	Value string `json:"value"`
}

func (r FundRequest) Parse() (*uint256.Int, error) {
	return domain.ParseAmount(r.Value)
}

type AddFlightKeyRequest struct {
	FlightKey string `json:"flight_key"`
}

func (r AddFlightKeyRequest) Parse() (domain.FlightKey, error) {
	return domain.ParseFlightKey(r.FlightKey)
}

type BuildInsuranceRequest struct {
	Airline      string  `json:"airline"`
	TicketNumber *uint64 `json:"ticket_number"`
}

func (r BuildInsuranceRequest) Parse() (domain.PrincipalID, uint64, error) {
	airline, err := domain.ParsePrincipalID(r.Airline)
	if err != nil {
		return domain.PrincipalID{}, 0, err
	}
	if r.TicketNumber == nil {
		return domain.PrincipalID{}, 0, dErrors.New(dErrors.CodeValidation, "ticket_number is required")
	}
	return airline, *r.TicketNumber, nil
}

type PurchaseRequest struct {
	Buyer string `json:"buyer"`
	Value string `json:"value"`
}

func (r PurchaseRequest) Parse() (domain.PrincipalID, *uint256.Int, error) {
	buyer, err := domain.ParsePrincipalID(r.Buyer)
	if err != nil {
		return domain.PrincipalID{}, nil, err
	}
	value, err := domain.ParseAmount(r.Value)
	if err != nil {
		return domain.PrincipalID{}, nil, err
	}
	return buyer, value, nil
}

type CreditRequest struct {
	RatePercent *uint64 `json:"rate_percent"`
}

func (r CreditRequest) Parse() (uint64, error) {
	if r.RatePercent == nil {
		return 0, dErrors.New(dErrors.CodeValidation, "rate_percent is required")
	}
	return *r.RatePercent, nil
}

type WithdrawRequest struct {
	Passenger string `json:"passenger"`
}

func (r WithdrawRequest) Parse() (domain.PrincipalID, error) {
	return domain.ParsePrincipalID(r.Passenger)
}

type FlightKeyRequest struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Departure uint64 `json:"departure"`
}

func (r FlightKeyRequest) Parse() (domain.PrincipalID, string, error) {
	airline, err := domain.ParsePrincipalID(r.Airline)
	if err != nil {
		return domain.PrincipalID{}, "", err
	}
	if strings.TrimSpace(r.Flight) == "" {
		return domain.PrincipalID{}, "", dErrors.New(dErrors.CodeValidation, "flight is required")
	}
	return airline, r.Flight, nil
}

type InsuranceKeyRequest struct {
	FlightKey    string `json:"flight_key"`
	TicketNumber uint64 `json:"ticket_number"`
}

type IssueTokenRequest struct {
	Caller     string `json:"caller"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

func (r IssueTokenRequest) Parse(fallback time.Duration) (domain.CallerID, time.Duration, error) {
	caller, err := domain.ParseCallerID(r.Caller)
	if err != nil {
		return domain.CallerID{}, 0, err
	}
	if r.TTLSeconds < 0 {
		return domain.CallerID{}, 0, dErrors.New(dErrors.CodeValidation, "ttl_seconds must not be negative")
	}
	ttl := fallback
	if r.TTLSeconds > 0 {
		ttl = time.Duration(r.TTLSeconds) * time.Second
	}
	return caller, ttl, nil
}

// Responses

type AirlineResponse struct {
	ID             string   `json:"id"`
	Registered     bool     `json:"registered"`
	Funded         bool     `json:"funded"`
	Votes          uint64   `json:"votes"`
	Voters         []string `json:"voters,omitempty"`
	FlightKeys     []string `json:"flight_keys"`
	InsuranceCount uint64   `json:"insurance_count"`
	Contributed    string   `json:"contributed"`
}

func toAirlineResponse(a *airlinemodels.Airline, voters []domain.PrincipalID) AirlineResponse {
	resp := AirlineResponse{
		ID:             a.ID.String(),
		Registered:     a.Registered,
		Funded:         a.Funded,
		Votes:          a.Ballot.Count,
		FlightKeys:     make([]string, 0, len(a.FlightKeys)),
		InsuranceCount: a.InsuranceCount,
		Contributed:    amountString(a.Contributed),
	}
	for _, k := range a.FlightKeys {
		resp.FlightKeys = append(resp.FlightKeys, k.String())
	}
	for _, v := range voters {
		resp.Voters = append(resp.Voters, v.String())
	}
	return resp
}

type InsuranceResponse struct {
	Key          string `json:"key"`
	FlightKey    string `json:"flight_key"`
	TicketNumber uint64 `json:"ticket_number"`
	Airline      string `json:"airline"`
	Buyer        string `json:"buyer,omitempty"`
	Value        string `json:"value"`
	State        string `json:"state"`
	Paid         bool   `json:"paid"`
}

func toInsuranceResponse(i *insurancemodels.Insurance) InsuranceResponse {
	resp := InsuranceResponse{
		Key:          i.Key.String(),
		FlightKey:    i.FlightKey.String(),
		TicketNumber: i.TicketNumber,
		Airline:      i.Airline.String(),
		Value:        amountString(i.Value),
		State:        i.State.String(),
		Paid:         i.Paid,
	}
	if i.Buyer != nil {
		resp.Buyer = i.Buyer.String()
	}
	return resp
}

func toInsuranceList(records []*insurancemodels.Insurance) []InsuranceResponse {
	out := make([]InsuranceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toInsuranceResponse(r))
	}
	return out
}

type RegistryResponse struct {
	Airlines      uint64 `json:"airlines_count"`
	Registered    uint64 `json:"registered_count"`
	Funded        uint64 `json:"funded_count"`
	MinimumQuorum uint64 `json:"minimum_quorum"`
	MinimumFund   string `json:"minimum_fund"`
}

func amountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
