package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "flightsurety/pkg/domain-errors"
)

const (
	validAddress = "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"
	validKey     = "0x0f9a1d7c5e2b3a4968d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a2f1e0d9c8b7a6f5"
)

// TestParsePrincipalID_Invariants validates the parsing invariant:
// "addresses are 20 bytes, hex encoded, never the zero address"
func TestParsePrincipalID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePrincipalID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParsePrincipalID("0x1234")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero address", func(t *testing.T) {
		_, err := ParsePrincipalID("0x" + strings.Repeat("0", 40))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts bare and prefixed hex", func(t *testing.T) {
		prefixed, err := ParsePrincipalID(validAddress)
		require.NoError(t, err)
		bare, err := ParsePrincipalID(strings.TrimPrefix(validAddress, "0x"))
		require.NoError(t, err)
		assert.Equal(t, prefixed, bare)
		assert.Equal(t, validAddress, prefixed.String())
	})

	t.Run("accepts mixed case", func(t *testing.T) {
		id, err := ParsePrincipalID(strings.ToUpper(validAddress[2:]))
		require.NoError(t, err)
		assert.Equal(t, validAddress, id.String())
	})
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE airlines;--", true},
		{"Null byte injection", validAddress[:20] + "\x00" + validAddress[21:], true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace padded", " " + validAddress + " ", true},
		{"Non-hex digits", "0x" + strings.Repeat("g", 40), true},
		{"Valid", validAddress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrincipalID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures key and address types parse alike.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	_, errPrincipal := ParsePrincipalID(validAddress)
	_, errCaller := ParseCallerID(validAddress)
	_, errFlight := ParseFlightKey(validKey)
	_, errInsurance := ParseInsuranceKey(validKey)
	require.NoError(t, errPrincipal)
	require.NoError(t, errCaller)
	require.NoError(t, errFlight)
	require.NoError(t, errInsurance)

	for _, input := range []string{"", "invalid", "0x" + strings.Repeat("0", 64)} {
		t.Run("all keys reject: "+input, func(t *testing.T) {
			_, errFlight := ParseFlightKey(input)
			_, errInsurance := ParseInsuranceKey(input)
			require.Error(t, errFlight)
			require.Error(t, errInsurance)
		})
	}
}

func TestCallerPrincipalConversion(t *testing.T) {
	principal, err := ParsePrincipalID(validAddress)
	require.NoError(t, err)

	caller := principal.Caller()
	assert.Equal(t, principal.String(), caller.String())
	assert.Equal(t, principal, caller.Principal())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Airline PrincipalID `json:"airline"`
		Flight  FlightKey   `json:"flight_key"`
	}
	body := `{"airline":"` + validAddress + `","flight_key":"` + validKey + `"}`

	var p payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, validAddress, p.Airline.String())
	assert.Equal(t, validKey, p.Flight.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))

	err = json.Unmarshal([]byte(`{"airline":"nope"}`), &p)
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	t.Run("parses decimal", func(t *testing.T) {
		v, err := ParseAmount("10000000000000000000")
		require.NoError(t, err)
		assert.True(t, v.Eq(Ether(10)))
	})

	t.Run("rejects empty and negative", func(t *testing.T) {
		for _, in := range []string{"", "  ", "-1", "1.5", "abc"} {
			_, err := ParseAmount(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}
