package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/pkg/domain"
)

func mustPrincipal(t *testing.T, s string) domain.PrincipalID {
	t.Helper()
	id, err := domain.ParsePrincipalID(s)
	require.NoError(t, err)
	return id
}

func TestFlightKey(t *testing.T) {
	airline := mustPrincipal(t, "0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	other := mustPrincipal(t, "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2")

	t.Run("is stable across calls", func(t *testing.T) {
		assert.Equal(t, FlightKey(airline, "ND1309", 1700000000), FlightKey(airline, "ND1309", 1700000000))
	})

	t.Run("every input participates", func(t *testing.T) {
		base := FlightKey(airline, "ND1309", 1700000000)
		assert.NotEqual(t, base, FlightKey(other, "ND1309", 1700000000))
		assert.NotEqual(t, base, FlightKey(airline, "ND1310", 1700000000))
		assert.NotEqual(t, base, FlightKey(airline, "ND1309", 1700000001))
	})

	t.Run("never the zero key", func(t *testing.T) {
		assert.False(t, FlightKey(airline, "", 0).IsNil())
	})
}

func TestInsuranceKey(t *testing.T) {
	airline := mustPrincipal(t, "0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	flight := FlightKey(airline, "ND1309", 1700000000)
	otherFlight := FlightKey(airline, "ND1309", 1700003600)

	assert.Equal(t, InsuranceKey(flight, 42), InsuranceKey(flight, 42))
	assert.NotEqual(t, InsuranceKey(flight, 42), InsuranceKey(flight, 43))
	assert.NotEqual(t, InsuranceKey(flight, 42), InsuranceKey(otherFlight, 42))

	seen := make(map[domain.InsuranceKey]uint64)
	for ticket := uint64(0); ticket < 1000; ticket++ {
		k := InsuranceKey(flight, ticket)
		prev, dup := seen[k]
		require.False(t, dup, "tickets %d and %d collide", prev, ticket)
		seen[k] = ticket
	}
}

func TestInsuranceKey_KnownVector(t *testing.T) {
	// keccak256 of 64 zero bytes.
	want, err := domain.ParseInsuranceKey("0xad3228b676f7d3cd4284a5443f17f1962b36e491b30a40b2405849e597ba5fb5")
	require.NoError(t, err)
	assert.Equal(t, want, InsuranceKey(domain.FlightKey{}, 0))
}
