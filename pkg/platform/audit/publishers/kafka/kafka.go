// Package kafka forwards audit events to per-category Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "presale/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes each event as JSON to "<prefix>.<category>", keyed by user ID
// so a user's events stay ordered within a partition.
type Publisher struct {
	producer    Producer
	topicPrefix string
	logger      *slog.Logger
}

func New(producer Producer, topicPrefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{producer: producer, topicPrefix: topicPrefix, logger: logger}
}

// NewClient builds a franz-go client for the given seed brokers.
func NewClient(brokers []string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(0),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return client, nil
}

// Topic returns the topic an event category is published to.
func (p *Publisher) Topic(category audit.EventCategory) string {
	return p.topicPrefix + "." + string(category)
}

// Topics lists every topic this publisher may write to.
func (p *Publisher) Topics() []string {
	return []string{
		p.Topic(audit.CategoryCompliance),
		p.Topic(audit.CategorySecurity),
		p.Topic(audit.CategoryOperations),
	}
}

func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.Topic(category),
		Key:   []byte(event.UserID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.WarnContext(ctx, "failed to publish audit event",
			"topic", record.Topic,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("kafka: produce: %w", err)
	}
	return nil
}

// EnsureTopics creates the audit topics, ignoring ones that already exist.
func EnsureTopics(ctx context.Context, client *kgo.Client, partitions int32, replication int16, topics ...string) error {
	admin := kadm.NewClient(client)
	resps, err := admin.CreateTopics(ctx, partitions, replication, nil, topics...)
	if err != nil {
		return fmt.Errorf("kafka: create topics: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("kafka: create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}
