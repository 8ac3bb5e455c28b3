package domain

import (
	"strings"

	"github.com/holiman/uint256"

	dErrors "flightsurety/pkg/domain-errors"
)

// WeiPerEther is the number of base units in one whole unit of the native currency.
const WeiPerEther uint64 = 1_000_000_000_000_000_000

// ParseAmount parses a non-negative decimal amount of base units.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid amount")
	}
	return v, nil
}

// Ether returns n whole units expressed in base units.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(WeiPerEther))
}
