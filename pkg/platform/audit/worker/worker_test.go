package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/store/memory"
)

type failingSink struct{}

func (failingSink) Append(context.Context, audit.Event) error { return errors.New("sink down") }

func TestWorker_DrainsUntilClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Subject: "a", Action: string(audit.EventVoteCast)}
	inbox <- audit.Event{Subject: "a", Action: string(audit.EventAirlineRegistered)}
	close(inbox)

	err := NewWorker(store, inbox).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventVoteCast), events[0].Action)
}

func TestWorker_ContinuesPastFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Subject: "a"}
	inbox <- audit.Event{Subject: "b"}
	close(inbox)

	var failed []string
	w := NewWorker(failingSink{}, inbox, WithErrorHook(func(e audit.Event, _ error) {
		failed = append(failed, e.Subject)
	}))
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []string{"a", "b"}, failed)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event)).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
