// Package identity derives the stable identifiers that address flight and
// insurance records. Derivation is pure: the same inputs always produce the
// same key, which is what lets collaborators address records without an
// allocation step.
package identity

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"flightsurety/pkg/domain"
)

// FlightKey hashes airline ‖ flight ‖ departure, with departure encoded as a
// 32-byte big-endian word.
func FlightKey(airline domain.PrincipalID, flight string, departure uint64) domain.FlightKey {
	word := uint256.NewInt(departure).Bytes32()

	h := sha3.NewLegacyKeccak256()
	h.Write(airline[:])
	h.Write([]byte(flight))
	h.Write(word[:])

	var key domain.FlightKey
	copy(key[:], h.Sum(nil))
	return key
}

// InsuranceKey hashes flightKey ‖ ticket, with the ticket number encoded as a
// 32-byte big-endian word.
func InsuranceKey(flightKey domain.FlightKey, ticket uint64) domain.InsuranceKey {
	word := uint256.NewInt(ticket).Bytes32()

	h := sha3.NewLegacyKeccak256()
	h.Write(flightKey[:])
	h.Write(word[:])

	var key domain.InsuranceKey
	copy(key[:], h.Sum(nil))
	return key
}
