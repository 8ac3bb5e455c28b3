// Package settlement holds the payouts the ledger has released. The hosting
// platform drains the book and performs the actual value transfers.
package settlement

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
)

// Payout is one released credit.
type Payout struct {
	Passenger domain.PrincipalID
	Amount    *uint256.Int
	Ref       domain.InsuranceKey
}

// Book accumulates payouts per passenger.
type Book struct {
	mu       sync.Mutex
	balances map[domain.PrincipalID]*uint256.Int
	pending  []Payout
}

func NewBook() *Book {
	return &Book{balances: make(map[domain.PrincipalID]*uint256.Int)}
}

// Transfer records a payout owed to a passenger.
func (b *Book) Transfer(_ context.Context, to domain.PrincipalID, amount *uint256.Int, ref domain.InsuranceKey) error {
	if amount == nil || amount.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "payout amount must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.balances[to]
	if !ok {
		bal = new(uint256.Int)
	}
	sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
	if overflow {
		return dErrors.New(dErrors.CodeInvariantViolation, "passenger balance overflows")
	}
	b.balances[to] = sum
	b.pending = append(b.pending, Payout{Passenger: to, Amount: new(uint256.Int).Set(amount), Ref: ref})
	return nil
}

// Balance returns the total released to a passenger.
func (b *Book) Balance(_ context.Context, passenger domain.PrincipalID) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bal, ok := b.balances[passenger]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Drain returns the payouts released since the last call, oldest first.
func (b *Book) Drain(_ context.Context) []Payout {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}
