package models

import (
	"time"

	"github.com/holiman/uint256"

	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
)

// State is the lifecycle position of an insurance record.
type State int

const (
	StateNotExist State = iota
	StateWaitingForBuyer
	StateBought
	StatePassed
	StateExpired
)

var stateNames = map[State]string{
	StateNotExist:        "not_exist",
	StateWaitingForBuyer: "waiting_for_buyer",
	StateBought:          "bought",
	StatePassed:          "passed",
	StateExpired:         "expired",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether crediting leaves the state alone.
func (s State) IsTerminal() bool {
	return s == StatePassed || s == StateExpired
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Insurance is one ticket's cover on one flight.
//
// Invariants:
//   - Buyer is set from the purchase on and never changes
//   - Paid implies State is Passed
type Insurance struct {
	Key          domain.InsuranceKey `json:"key"`
	FlightKey    domain.FlightKey    `json:"flight_key"`
	TicketNumber uint64              `json:"ticket_number"`
	Airline      domain.PrincipalID  `json:"airline"`
	Buyer        *domain.PrincipalID `json:"buyer,omitempty"`
	Value        *uint256.Int        `json:"value"`
	State        State               `json:"state"`
	Paid         bool                `json:"paid"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewInsurance builds a record waiting for its buyer.
func NewInsurance(key domain.InsuranceKey, flight domain.FlightKey, ticket uint64, airline domain.PrincipalID, now time.Time) *Insurance {
	return &Insurance{
		Key:          key,
		FlightKey:    flight,
		TicketNumber: ticket,
		Airline:      airline,
		Value:        new(uint256.Int),
		State:        StateWaitingForBuyer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (i *Insurance) Clone() *Insurance {
	c := *i
	if i.Buyer != nil {
		b := *i.Buyer
		c.Buyer = &b
	}
	if i.Value != nil {
		c.Value = new(uint256.Int).Set(i.Value)
	} else {
		c.Value = new(uint256.Int)
	}
	return &c
}

func (i *Insurance) CanPurchase() error {
	if i.State != StateWaitingForBuyer {
		return dErrors.New(dErrors.CodeNotPurchasable, "insurance is not waiting for a buyer")
	}
	return nil
}

func (i *Insurance) ApplyPurchase(buyer domain.PrincipalID, value *uint256.Int, now time.Time) {
	b := buyer
	i.Buyer = &b
	i.Value = new(uint256.Int).Set(value)
	i.State = StateBought
	i.UpdatedAt = now
}

// Credit is the outcome crediting computes for one record before anything
// is applied.
type Credit struct {
	Key    domain.InsuranceKey
	Before State
	After  State
	Value  *uint256.Int
}

// ComputeCredit returns the record's crediting outcome at ratePercent.
// Terminal records are skipped (ok is false). A bought value is scaled by
// ratePercent/100, truncating; an overflowing product is an invariant
// violation.
func (i *Insurance) ComputeCredit(ratePercent uint64) (credit Credit, ok bool, err error) {
	if i.State.IsTerminal() {
		return Credit{}, false, nil
	}
	credit = Credit{Key: i.Key, Before: i.State, After: StateExpired, Value: new(uint256.Int).Set(i.Value)}
	if i.State != StateBought {
		return credit, true, nil
	}

	product, overflow := new(uint256.Int).MulOverflow(i.Value, uint256.NewInt(ratePercent))
	if overflow {
		return Credit{}, false, dErrors.New(dErrors.CodeInvariantViolation, "credited value overflows")
	}
	credit.Value = product.Div(product, uint256.NewInt(100))
	if !credit.Value.IsZero() {
		credit.After = StatePassed
	}
	return credit, true, nil
}

func (i *Insurance) ApplyCredit(c Credit, now time.Time) {
	i.Value = new(uint256.Int).Set(c.Value)
	i.State = c.After
	i.UpdatedAt = now
}

// CanPay checks passenger may withdraw the credited value.
func (i *Insurance) CanPay(passenger domain.PrincipalID) error {
	switch {
	case i.State != StatePassed:
		return dErrors.New(dErrors.CodeNotPayable, "insurance has not been credited")
	case i.Buyer == nil || *i.Buyer != passenger:
		return dErrors.New(dErrors.CodeNotPayable, "insurance belongs to another passenger")
	case i.Paid:
		return dErrors.New(dErrors.CodeNotPayable, "insurance has already been paid")
	}
	return nil
}

func (i *Insurance) ApplyPayment(now time.Time) {
	i.Paid = true
	i.UpdatedAt = now
}

// RevertPayment undoes ApplyPayment when the transfer was refused.
func (i *Insurance) RevertPayment(now time.Time) {
	i.Paid = false
	i.UpdatedAt = now
}

// CreditSummary counts what one crediting pass did.
type CreditSummary struct {
	FlightKey domain.FlightKey `json:"flight_key"`
	Passed    int              `json:"passed"`
	Expired   int              `json:"expired"`
	Skipped   int              `json:"skipped"`
}
