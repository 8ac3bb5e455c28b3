package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "flightsurety/pkg/platform/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSink_Append(t *testing.T) {
	producer := &recordingProducer{}
	sink := New(producer, "ledger-events")

	event := audit.Event{
		ID:        "5f0c7d3e-5a43-4a55-9c39-1e0f4b0a7c11",
		Category:  audit.CategoryCompliance,
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Action:    string(audit.EventVoteCast),
		Subject:   "0x5b38da6a701c568545dcfcb03fcb875f56beddc4",
		ActorID:   "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2",
		Before:    "0",
		After:     "1",
	}
	require.NoError(t, sink.Append(context.Background(), event))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "ledger-events", rec.Topic)
	assert.Equal(t, event.Subject, string(rec.Key))
	require.Len(t, rec.Headers, 2)
	assert.Equal(t, "action", rec.Headers[0].Key)
	assert.Equal(t, string(audit.EventVoteCast), string(rec.Headers[0].Value))

	decoded, err := Decode(rec.Value)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestSink_AppendPropagatesProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker unavailable")}
	err := New(producer, "ledger-events").Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
