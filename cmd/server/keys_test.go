package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/internal/identity"
	"flightsurety/pkg/testutil"
)

func runKeys(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := keysCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestKeysCommand(t *testing.T) {
	airline := testutil.Principal(1)
	flight := identity.FlightKey(airline, "FS101", 1_700_000_000)

	got, err := runKeys(t, "flight", "--airline", airline.String(), "--flight", "FS101", "--departure", "1700000000")
	require.NoError(t, err)
	assert.Equal(t, flight.String(), got)

	got, err = runKeys(t, "insurance", "--flight-key", flight.String(), "--ticket", "42")
	require.NoError(t, err)
	assert.Equal(t, identity.InsuranceKey(flight, 42).String(), got)

	_, err = runKeys(t, "flight", "--airline", "0x00", "--flight", "FS101")
	require.Error(t, err)
}
