package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParsePrincipalID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParsePrincipalID(f *testing.F) {
	f.Add("")
	f.Add("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	f.Add("0x0000000000000000000000000000000000000000")
	f.Add("not-an-address")
	f.Add("'; DROP TABLE airlines;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParsePrincipalID(input)
		if err == nil {
			roundTrip, err2 := ParsePrincipalID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
			if id.IsNil() {
				t.Error("zero address was accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseFlightKey mirrors FuzzParsePrincipalID for 32-byte keys.
func FuzzParseFlightKey(f *testing.F) {
	f.Add("")
	f.Add("0x0f9a1d7c5e2b3a4968d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a2f1e0d9c8b7a6f5")
	f.Add("0X0F9A1D7C5E2B3A4968D7C6B5A4F3E2D1C0B9A8F7E6D5C4B3A2F1E0D9C8B7A6F5")

	f.Fuzz(func(t *testing.T, input string) {
		k, err := ParseFlightKey(input)
		if err != nil {
			return
		}
		again, err := ParseFlightKey(k.String())
		if err != nil || again != k {
			t.Errorf("flight key failed round-trip: %v", err)
		}
	})
}
