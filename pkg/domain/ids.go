package domain

import (
	"encoding/hex"
	"strings"

	dErrors "flightsurety/pkg/domain-errors"
)

const (
	addressLength = 20
	keyLength     = 32
)

// PrincipalID is the 20-byte address of an airline or passenger.
type PrincipalID [addressLength]byte

// CallerID is the 20-byte address of the process invoking an operation.
// Collaborator processes and principals share the address space, so a caller
// can be viewed as a principal (owner checks, the fallback funding path).
type CallerID [addressLength]byte

// FlightKey addresses a flight filed by an airline.
type FlightKey [keyLength]byte

// InsuranceKey addresses one insurance record of a flight.
type InsuranceKey [keyLength]byte

// ParsePrincipalID parses a 0x-prefixed (or bare) 40 hex digit address.
// The zero address is rejected.
func ParsePrincipalID(s string) (PrincipalID, error) {
	var id PrincipalID
	if err := parseHex(s, id[:], "principal id"); err != nil {
		return PrincipalID{}, err
	}
	return id, nil
}

// ParseCallerID parses a caller address with the same rules as ParsePrincipalID.
func ParseCallerID(s string) (CallerID, error) {
	var id CallerID
	if err := parseHex(s, id[:], "caller id"); err != nil {
		return CallerID{}, err
	}
	return id, nil
}

// ParseFlightKey parses a 64 hex digit flight key.
func ParseFlightKey(s string) (FlightKey, error) {
	var k FlightKey
	if err := parseHex(s, k[:], "flight key"); err != nil {
		return FlightKey{}, err
	}
	return k, nil
}

// ParseInsuranceKey parses a 64 hex digit insurance key.
func ParseInsuranceKey(s string) (InsuranceKey, error) {
	var k InsuranceKey
	if err := parseHex(s, k[:], "insurance key"); err != nil {
		return InsuranceKey{}, err
	}
	return k, nil
}

func parseHex(s string, dst []byte, what string) error {
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	raw := s
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw = raw[2:]
	}
	if len(raw) != hex.EncodedLen(len(dst)) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" length")
	}
	if _, err := hex.Decode(dst, []byte(raw)); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" encoding")
	}
	if isZero(dst) {
		return dErrors.New(dErrors.CodeInvalidInput, what+" cannot be zero")
	}
	return nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func encode(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func (id PrincipalID) String() string { return encode(id[:]) }
func (id PrincipalID) IsNil() bool    { return isZero(id[:]) }

// Caller returns the same address viewed as a caller.
func (id PrincipalID) Caller() CallerID { return CallerID(id) }

func (id PrincipalID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PrincipalID) UnmarshalText(text []byte) error {
	parsed, err := ParsePrincipalID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id CallerID) String() string { return encode(id[:]) }
func (id CallerID) IsNil() bool    { return isZero(id[:]) }

// Principal returns the same address viewed as a principal.
func (id CallerID) Principal() PrincipalID { return PrincipalID(id) }

func (id CallerID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CallerID) UnmarshalText(text []byte) error {
	parsed, err := ParseCallerID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (k FlightKey) String() string { return encode(k[:]) }
func (k FlightKey) IsNil() bool    { return isZero(k[:]) }

func (k FlightKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *FlightKey) UnmarshalText(text []byte) error {
	parsed, err := ParseFlightKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k InsuranceKey) String() string { return encode(k[:]) }
func (k InsuranceKey) IsNil() bool    { return isZero(k[:]) }

func (k InsuranceKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *InsuranceKey) UnmarshalText(text []byte) error {
	parsed, err := ParseInsuranceKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
