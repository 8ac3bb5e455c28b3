package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "flightsurety/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("invariant violation omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInvariantViolation, "credited value overflows"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "invariant_violation", body["category"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := map[dErrors.Code]int{
		dErrors.CodeNotOperational:      http.StatusServiceUnavailable,
		dErrors.CodeNotOwner:            http.StatusForbidden,
		dErrors.CodeCallerNotAuthorized: http.StatusForbidden,
		dErrors.CodeDuplicateVote:       http.StatusConflict,
		dErrors.CodeReentrancy:          http.StatusConflict,
		dErrors.CodeInsufficientFunds:   http.StatusUnprocessableEntity,
		dErrors.CodeNotPayable:          http.StatusUnprocessableEntity,
		dErrors.CodeNotFound:            http.StatusNotFound,
		dErrors.CodeVoteBookkeeping:     http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Principal string `json:"principal"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"principal":"0x01"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "0x01", dst.Principal)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unexpected":true}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
