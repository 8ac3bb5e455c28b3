package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrAlreadyUsed: the key is already occupied (record slot, bootstrap)
//   - ErrInvalidState: record is in the wrong state for the requested write
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
