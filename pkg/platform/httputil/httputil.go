// Package httputil writes JSON responses and translates domain error codes
// into HTTP statuses.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "flightsurety/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

var codeStatuses = map[dErrors.Code]int{
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeInvalidInput: http.StatusBadRequest,
	dErrors.CodeValidation:   http.StatusBadRequest,

	dErrors.CodeUnauthorized:        http.StatusUnauthorized,
	dErrors.CodeForbidden:           http.StatusForbidden,
	dErrors.CodeNotOwner:            http.StatusForbidden,
	dErrors.CodeCallerNotAuthorized: http.StatusForbidden,

	dErrors.CodeNotFound:          http.StatusNotFound,
	dErrors.CodeConflict:          http.StatusConflict,
	dErrors.CodeAlreadyExists:     http.StatusConflict,
	dErrors.CodeAlreadyRegistered: http.StatusConflict,
	dErrors.CodeDuplicateVote:     http.StatusConflict,
	dErrors.CodeReentrancy:        http.StatusConflict,

	dErrors.CodeNotRegistered:     http.StatusUnprocessableEntity,
	dErrors.CodeInsufficientFunds: http.StatusUnprocessableEntity,
	dErrors.CodeNotPurchasable:    http.StatusUnprocessableEntity,
	dErrors.CodeNotPayable:        http.StatusUnprocessableEntity,

	dErrors.CodeNotOperational: http.StatusServiceUnavailable,
	dErrors.CodeTimeout:        http.StatusGatewayTimeout,
}

// StatusFor maps a domain code to its HTTP status. Unknown codes are 500.
func StatusFor(code dErrors.Code) int {
	if status, ok := codeStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error       string `json:"error"`
	Category    string `json:"category"`
	Description string `json:"error_description,omitempty"`
}

// WriteError writes the error envelope for err. Descriptions of internal
// and invariant failures are never returned to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	body := errorBody{
		Error:    string(code),
		Category: string(code.Category()),
	}
	if status != http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.Description = de.Message
		}
	}
	WriteJSON(w, status, body)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON strictly decodes a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
