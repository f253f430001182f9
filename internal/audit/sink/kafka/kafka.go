// Package kafka emits audit messages to a Kafka topic. Messages are keyed by
// event name so all records for one event type land in one partition and stay
// ordered.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/sullis/logging-log4j-audit/internal/audit"
)

type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the topic exists. Emission is
// synchronous: the failure policy needs to see broker errors, so there is no
// fire-and-forget buffering here.
func New(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	return &Sink{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

func (s *Sink) Emit(ctx context.Context, msg audit.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(msg.Name),
		Value: data,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit message: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
