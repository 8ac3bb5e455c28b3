package models

import (
	"maps"
	"slices"
	"time"

	"github.com/holiman/uint256"

	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
)

// Airline is the per-principal registry record.
//
// Invariants:
//   - Funded implies Registered implies Exists
//   - Ballot.Count equals the number of voters in Ballot.Voters
//   - Contributed only grows
type Airline struct {
	ID             domain.PrincipalID `json:"id"`
	Exists         bool               `json:"exists"`
	Registered     bool               `json:"registered"`
	Funded         bool               `json:"funded"`
	FlightKeys     []domain.FlightKey `json:"flight_keys"`
	Ballot         Ballot             `json:"ballot"`
	InsuranceCount uint64             `json:"insurance_count"`
	Contributed    *uint256.Int       `json:"contributed"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Ballot tracks who voted for a candidate.
type Ballot struct {
	Voters map[domain.PrincipalID]struct{} `json:"-"`
	Count  uint64                          `json:"count"`
}

// HasVoted reports whether voter is in the ballot.
func (b Ballot) HasVoted(voter domain.PrincipalID) bool {
	_, ok := b.Voters[voter]
	return ok
}

// VoterList returns the voters sorted by address.
func (b Ballot) VoterList() []domain.PrincipalID {
	voters := slices.Collect(maps.Keys(b.Voters))
	slices.SortFunc(voters, func(a, c domain.PrincipalID) int {
		return slices.Compare(a[:], c[:])
	})
	return voters
}

// NewAirline builds an existing record with an empty flight list and ballot.
func NewAirline(id domain.PrincipalID, registered bool, now time.Time) (*Airline, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "airline principal is required")
	}
	return &Airline{
		ID:          id,
		Exists:      true,
		Registered:  registered,
		Ballot:      Ballot{Voters: make(map[domain.PrincipalID]struct{})},
		Contributed: new(uint256.Int),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a deep copy. Store callbacks mutate clones so a failed
// operation never touches the committed record.
func (a *Airline) Clone() *Airline {
	c := *a
	c.FlightKeys = slices.Clone(a.FlightKeys)
	c.Ballot.Voters = maps.Clone(a.Ballot.Voters)
	if c.Ballot.Voters == nil {
		c.Ballot.Voters = make(map[domain.PrincipalID]struct{})
	}
	if a.Contributed != nil {
		c.Contributed = new(uint256.Int).Set(a.Contributed)
	} else {
		c.Contributed = new(uint256.Int)
	}
	return &c
}

// CanRegister checks the record can be flipped to registered.
func (a *Airline) CanRegister() error {
	if a.Registered {
		return dErrors.New(dErrors.CodeAlreadyRegistered, "airline is already registered")
	}
	return nil
}

func (a *Airline) ApplyRegistration(now time.Time) {
	a.Registered = true
	a.UpdatedAt = now
}

// CanVote checks voter has not voted for this candidate yet.
func (a *Airline) CanVote(voter domain.PrincipalID) error {
	if a.Ballot.HasVoted(voter) {
		return dErrors.New(dErrors.CodeDuplicateVote, "caller has already voted")
	}
	return nil
}

// ApplyVote records the vote and asserts the ballot bookkeeping held.
func (a *Airline) ApplyVote(voter domain.PrincipalID, now time.Time) error {
	before := a.Ballot.Count
	a.Ballot.Voters[voter] = struct{}{}
	a.Ballot.Count++
	a.UpdatedAt = now
	if a.Ballot.Count != before+1 || !a.Ballot.HasVoted(voter) {
		return dErrors.New(dErrors.CodeVoteBookkeeping, "vote count does not match ballot")
	}
	return nil
}

// CanFund checks the principal may contribute.
func (a *Airline) CanFund() error {
	if !a.Registered {
		return dErrors.New(dErrors.CodeNotRegistered, "airline is not registered")
	}
	return nil
}

// ApplyFunding adds value to the contribution. It reports whether this was
// the first funding, the only case that changes the funded population.
func (a *Airline) ApplyFunding(value *uint256.Int, now time.Time) (first bool, err error) {
	sum, overflow := new(uint256.Int).AddOverflow(a.Contributed, value)
	if overflow {
		return false, dErrors.New(dErrors.CodeInvariantViolation, "contribution overflow")
	}
	a.Contributed = sum
	first = !a.Funded
	a.Funded = true
	a.UpdatedAt = now
	return first, nil
}

func (a *Airline) ApplyFlightKey(key domain.FlightKey, now time.Time) {
	a.FlightKeys = append(a.FlightKeys, key)
	a.UpdatedAt = now
}

func (a *Airline) ApplyInsuranceIssued(now time.Time) {
	a.InsuranceCount++
	a.UpdatedAt = now
}

// Counters are the registry-wide population counts.
type Counters struct {
	Airlines   uint64 `json:"airlines_count"`
	Registered uint64 `json:"registered_count"`
	Funded     uint64 `json:"funded_count"`
}

// MinimumQuorum is half the registered population, rounded down.
func (c Counters) MinimumQuorum() uint64 {
	return c.Registered / 2
}

// CounterDelta is the change an operation applies to Counters. It is
// committed together with the record it was computed for.
type CounterDelta struct {
	Airlines   uint64
	Registered uint64
	Funded     uint64
}

func (c Counters) Apply(d CounterDelta) Counters {
	return Counters{
		Airlines:   c.Airlines + d.Airlines,
		Registered: c.Registered + d.Registered,
		Funded:     c.Funded + d.Funded,
	}
}

// Details is the read model returned to collaborators.
type Details struct {
	*Airline
	Voters []domain.PrincipalID `json:"voters"`
}
