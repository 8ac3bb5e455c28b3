package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/pkg/platform/circuit"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *recordingSink) ListRecent(_ context.Context, limit int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) > limit {
		return append([]Event(nil), r.events[len(r.events)-limit:]...), nil
	}
	return append([]Event(nil), r.events...), nil
}

func (r *recordingSink) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestTee(t *testing.T) {
	ctx := context.Background()
	event := Event{ID: "1", Action: string(EventVoteCast), Subject: "0xa1"}

	t.Run("writes primary then mirrors", func(t *testing.T) {
		primary, mirror := &recordingSink{}, &recordingSink{}
		tee := NewTee(primary, mirror, nil)

		require.NoError(t, tee.Append(ctx, event))
		assert.Equal(t, 1, primary.len())
		assert.Equal(t, 1, mirror.len())

		got, err := tee.ListBySubject(ctx, "0xa1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("primary failure skips mirrors", func(t *testing.T) {
		primary, mirror := &recordingSink{err: errors.New("down")}, &recordingSink{}
		require.Error(t, NewTee(primary, mirror).Append(ctx, event))
		assert.Zero(t, mirror.len())
	})

	t.Run("mirror failures are joined", func(t *testing.T) {
		primary := &recordingSink{}
		bad1, bad2 := &recordingSink{err: errors.New("a")}, &recordingSink{err: errors.New("b")}
		err := NewTee(primary, bad1, bad2).Append(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
		assert.Equal(t, 1, primary.len())
	})
}

func TestGuardedSink(t *testing.T) {
	ctx := context.Background()
	event := Event{ID: "1", Action: string(EventFundsReceived), Subject: "0xa1"}

	mirror := &recordingSink{err: errors.New("broker unreachable")}
	guard := NewGuardedSink(mirror, circuit.New("kafka", circuit.WithFailureThreshold(2)),
		WithProbeInterval(time.Minute))
	clock := time.Unix(1_700_000_000, 0)
	guard.now = func() time.Time { return clock }

	// Failures are swallowed and open the circuit.
	require.NoError(t, guard.Append(ctx, event))
	require.NoError(t, guard.Append(ctx, event))
	require.True(t, guard.breaker.IsOpen())

	// First event after opening probes, the next one is skipped.
	require.NoError(t, guard.Append(ctx, event))
	require.NoError(t, guard.Append(ctx, event))
	assert.Equal(t, uint64(1), guard.Skipped())

	// Mirror recovers; the next due probe closes the circuit.
	mirror.mu.Lock()
	mirror.err = nil
	mirror.mu.Unlock()
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, guard.Append(ctx, event))
	assert.False(t, guard.breaker.IsOpen())
	assert.Zero(t, guard.Skipped())
	assert.Equal(t, 1, mirror.len())

	require.NoError(t, guard.Append(ctx, event))
	assert.Equal(t, 2, mirror.len())
}
