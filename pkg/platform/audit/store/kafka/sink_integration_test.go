//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/store/kafka"
	"flightsurety/pkg/testutil/containers"
)

type SinkSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	client   *kgo.Client
	topic    string
}

func TestSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SinkSuite))
}

func (s *SinkSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redpanda = mgr.GetRedpanda(s.T())

	s.topic = "ledger-events-" + uuid.NewString()[:8]
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	s.client = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	s.Require().NoError(kafka.EnsureTopic(ctx, admin, s.topic, 1, 1))
	// A second call must tolerate the existing topic.
	s.Require().NoError(kafka.EnsureTopic(ctx, admin, s.topic, 1, 1))
}

func (s *SinkSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *SinkSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sink := kafka.New(s.client, s.topic)
	sent := audit.Event{
		ID:        uuid.NewString(),
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC(),
		Action:    string(audit.EventAirlineFunded),
		Subject:   "0x5b38da6a701c568545dcfcb03fcb875f56beddc4",
		After:     "10000000000000000000",
	}
	s.Require().NoError(sink.Append(ctx, sent))

	fetches := s.client.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	got, err := kafka.Decode(records[0].Value)
	s.Require().NoError(err)
	s.Equal(sent.ID, got.ID)
	s.Equal(sent.After, got.After)
	s.True(sent.Timestamp.Equal(got.Timestamp))
}
