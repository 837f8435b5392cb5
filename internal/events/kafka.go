package events

import (
	"context"
	"encoding/json"

	"randevulu/internal/store"

	"github.com/segmentio/kafka-go"
)

const defaultKafkaTopic = "randevulu.appointments"

// kafkaPublisher keys messages by tenant so one tenant's events stay ordered
// within a partition.
type kafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func newKafkaPublisher(brokers []string, topic string) *kafkaPublisher {
	if topic == "" {
		topic = defaultKafkaTopic
	}
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.TenantID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	})
}

func (p *kafkaPublisher) Name() string { return SinkKafka }

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
