package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/requestcontext"
)

type capturePublisher struct {
	events []audit.Event
}

func (c *capturePublisher) Emit(_ context.Context, event audit.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestLogAudit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := &capturePublisher{}

	LogAudit(ctx, logger, pub, audit.EventVoteCast,
		"caller", "0xcaller",
		"candidate", "0xcandidate",
		"airline", "0xvoter",
		"before", "0",
		"after", "1",
	)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, string(audit.EventVoteCast), ev.Action)
	assert.Equal(t, "0xcandidate", ev.Subject, "candidate takes precedence over airline")
	assert.Equal(t, "0xcaller", ev.ActorID)
	assert.Equal(t, "0", ev.Before)
	assert.Equal(t, "1", ev.After)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, now, ev.Timestamp)

	assert.Contains(t, buf.String(), `"log_type":"audit"`)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}

func TestLogAudit_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		LogAudit(context.Background(), nil, nil, audit.EventVotesRead, "candidate", "0x1")
	})
}
