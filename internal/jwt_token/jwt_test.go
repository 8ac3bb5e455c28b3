package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "flightsurety/pkg/domain-errors"
	"flightsurety/pkg/testutil"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var caller = testutil.Caller(7)
var expiresIn = time.Hour

func Test_GenerateCallerToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)

	got, err := jwtService.CallerFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func Test_GenerateCallerToken_NilCaller(t *testing.T) {
	_, err := jwtService.GenerateCallerToken([20]byte{}, expiresIn)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", err.Error())
}

func Test_ValidateToken_WrongAudienceOrKey(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)

	otherAudience := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	_, err = otherAudience.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	otherKey := NewJWTService("another-key", "test-issuer", "test-audience")
	_, err = otherKey.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller, claims.Caller)
	assert.NotEmpty(t, claims.JTI)
}
