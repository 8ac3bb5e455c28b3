package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightsurety/pkg/domain"
)

func TestExtractString(t *testing.T) {
	flight := domain.FlightKey{0x01}
	list := []any{"airline", "0xa1", "flight_key", flight, "amount", 42, "dangling"}

	assert.Equal(t, "0xa1", ExtractString(list, "airline"))
	assert.Equal(t, flight.String(), ExtractString(list, "flight_key"))
	assert.Empty(t, ExtractString(list, "amount"), "non-string values are ignored")
	assert.Empty(t, ExtractString(list, "dangling"), "a key without a value is ignored")
	assert.Empty(t, ExtractString(list, "missing"))
	assert.Empty(t, ExtractString(nil, "airline"))
}
