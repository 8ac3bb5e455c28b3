package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerHex  = "0xa100000000000000000000000000000000000001"
	callerHex = "0xc000000000000000000000000000000000000001"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightsurety.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithEnvironment(t *testing.T) {
	t.Setenv("FLIGHTSURETY_OWNER", ownerHex)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "10000000000000000000", cfg.MinimumFund)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.False(t, cfg.EnforceAllowlist)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeConfig(t, `
httpAddr: ":9000"
owner: "`+ownerHex+`"
authorizedCallers:
  - "`+callerHex+`"
  - "0xC000000000000000000000000000000000000001"
minimumFund: "500"
txTimeout: 2s
redis:
  url: "redis://localhost:6379/0"
  poolSize: 4
kafka:
  brokers: ["localhost:9092"]
`)
	t.Setenv("FLIGHTSURETY_HTTP_ADDR", ":9100")
	t.Setenv("FLIGHTSURETY_ENFORCE_ALLOWLIST", "true")
	t.Setenv("FLIGHTSURETY_REDIS_POOL_SIZE", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTPAddr, "environment wins over the file")
	assert.True(t, cfg.EnforceAllowlist)
	assert.Equal(t, "500", cfg.MinimumFund)
	assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 8, cfg.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Redis.ReadTimeout, "unset nested fields keep defaults")
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "flightsurety.ledger-events", cfg.Kafka.Topic)

	callers, err := cfg.CallerIDs()
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, callerHex, callers[0].String())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing owner", func(t *testing.T) {
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "owner")
	})

	t.Run("bad amount and caller reported together", func(t *testing.T) {
		t.Setenv("FLIGHTSURETY_OWNER", ownerHex)
		t.Setenv("FLIGHTSURETY_MINIMUM_FUND", "-1")
		t.Setenv("FLIGHTSURETY_AUTHORIZED_CALLERS", "0x1234")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minimumFund")
		assert.Contains(t, err.Error(), "authorizedCallers")
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "owner: [unterminated"))
		require.Error(t, err)
	})
}
