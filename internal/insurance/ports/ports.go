// Package ports defines the collaborators the insurance ledger calls out to.
package ports

import (
	"context"

	"github.com/holiman/uint256"

	"flightsurety/pkg/domain"
)

// AirlineRegistry is the slice of the airline registry the insurance ledger
// needs. RecordInsuranceIssued must be called inside the caller's transaction.
type AirlineRegistry interface {
	AirlineExists(ctx context.Context, principal domain.PrincipalID) (bool, error)
	RecordInsuranceIssued(ctx context.Context, principal domain.PrincipalID) error
}

// Gate is the access check every operation passes first.
type Gate interface {
	RequireOperational(ctx context.Context) error
	RequireAuthorizedCaller(ctx context.Context, caller domain.CallerID, operation string) error
}

// Settler moves credited value to a passenger. The ledger only decides that a
// payout is due; the value transfer belongs to the hosting platform.
type Settler interface {
	Transfer(ctx context.Context, to domain.PrincipalID, amount *uint256.Int, ref domain.InsuranceKey) error
}
