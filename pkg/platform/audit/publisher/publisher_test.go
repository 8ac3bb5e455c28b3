package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/store/memory"
)

const subject = "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: subject,
		Action:  string(audit.EventAirlineRegistered),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventAirlineRegistered), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), audit.Event{
		Subject: subject,
		Action:  string(audit.EventVoteCast),
	})
	require.NoError(t, err)
	pub.Close()

	events, err := pub.List(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventVoteCast), events[0].Action)
}

func TestPublisher_AsyncDrainsOnCloseInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	actions := []audit.AuditEvent{
		audit.EventAirlineCreated,
		audit.EventVoteCast,
		audit.EventVoteCast,
		audit.EventAirlineRegistered,
		audit.EventAirlineFunded,
	}
	for _, a := range actions {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: subject, Action: string(a)}))
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, len(actions), "all events should be drained on close")
	for i, a := range actions {
		assert.Equal(t, string(a), events[i].Action)
	}
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				Subject: subject,
				Action:  string(audit.EventCallerChecked),
			})
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(events), 10)
	assert.NotEmpty(t, events)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject: subject,
		Action:  string(audit.EventAirlineCreated),
	}))
	after := time.Now()

	events, err := pub.List(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject:   subject,
		Action:    string(audit.EventAirlineCreated),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore())
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Subject: subject, Action: string(audit.EventVoteCast)})
	require.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_SamplesOnlyOperations(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithSampler(NewSampler(0)))
	defer pub.Close()

	ctx := context.Background()
	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: subject, Action: string(audit.EventVotesRead)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: subject, Action: string(audit.EventVoteCast)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: subject, Action: string(audit.EventCallerChecked)}))

	events, err := pub.List(ctx, subject)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventVoteCast), events[0].Action)
	assert.Equal(t, string(audit.EventCallerChecked), events[1].Action)
}
