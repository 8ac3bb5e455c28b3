// Package kafka streams ledger events to a Kafka topic. It is a write-only
// audit.Sink; queries are served by the primary store.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "flightsurety/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// payload is the JSON structure published to the topic.
// Field names match audit.Event for symmetric decoding by consumers.
type payload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	Action    string `json:"Action"`
	Subject   string `json:"Subject"`
	ActorID   string `json:"ActorID,omitempty"`
	Before    string `json:"Before,omitempty"`
	After     string `json:"After,omitempty"`
	Decision  string `json:"Decision,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
}

// Sink publishes one record per event, keyed by subject so that every event
// of a record lands in one partition and keeps its order.
type Sink struct {
	producer Producer
	topic    string
}

func New(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		ID:        event.ID,
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    event.Action,
		Subject:   event.Subject,
		ActorID:   event.ActorID,
		Before:    event.Before,
		After:     event.After,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce ledger event: %w", err)
	}
	return nil
}

// Decode parses a record value produced by Sink back into an event.
func Decode(value []byte) (audit.Event, error) {
	var p payload
	if err := json.Unmarshal(value, &p); err != nil {
		return audit.Event{}, fmt.Errorf("unmarshal ledger event: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("parse ledger event timestamp: %w", err)
	}
	return audit.Event{
		ID:        p.ID,
		Category:  audit.EventCategory(p.Category),
		Timestamp: ts,
		Action:    p.Action,
		Subject:   p.Subject,
		ActorID:   p.ActorID,
		Before:    p.Before,
		After:     p.After,
		Decision:  p.Decision,
		Reason:    p.Reason,
		RequestID: p.RequestID,
	}, nil
}

// EnsureTopic creates the events topic if it does not exist yet.
func EnsureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
