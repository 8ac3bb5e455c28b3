package testutil

import (
	"net/http"

	"flightsurety/pkg/domain"
	"flightsurety/pkg/requestcontext"
)

// Principal returns a deterministic non-zero address whose last two bytes
// encode n. Handy for building airlines and passengers in tests.
func Principal(n uint16) domain.PrincipalID {
	var id domain.PrincipalID
	id[0] = 0xa1
	id[18] = byte(n >> 8)
	id[19] = byte(n)
	return id
}

// Caller returns a deterministic collaborator address distinct from every
// Principal(n).
func Caller(n uint16) domain.CallerID {
	var id domain.CallerID
	id[0] = 0xc0
	id[18] = byte(n >> 8)
	id[19] = byte(n)
	return id
}

// WithCaller adds a caller identity to the request context, as the
// RequireCaller middleware would for an authenticated request.
func WithCaller(req *http.Request, caller domain.CallerID) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}
