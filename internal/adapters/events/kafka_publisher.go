package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/luminacare/pipeline-service/internal/contracts"
)

// KafkaPublisher writes event envelopes to Kafka, picking the topic by
// event class. Domain and analytics streams share the writer; the DLQ
// gets its own topic.
type KafkaPublisher struct {
	writer         *kafka.Writer
	domainTopic    string
	analyticsTopic string
	dlqTopic       string
}

func NewKafkaPublisher(brokers []string, domainTopic, analyticsTopic, dlqTopic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		domainTopic:    domainTopic,
		analyticsTopic: analyticsTopic,
		dlqTopic:       dlqTopic,
	}, nil
}

func (p *KafkaPublisher) PublishDomain(ctx context.Context, event contracts.EventEnvelope) error {
	return p.write(ctx, p.domainTopic, event.PartitionKey, event)
}

func (p *KafkaPublisher) PublishAnalytics(ctx context.Context, event contracts.EventEnvelope) error {
	return p.write(ctx, p.analyticsTopic, event.PartitionKey, event)
}

func (p *KafkaPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	return p.write(ctx, p.dlqTopic, record.OriginalEvent.PartitionKey, record)
}

func (p *KafkaPublisher) write(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
