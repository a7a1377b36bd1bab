package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

// Publish keys messages by car id so every event for one car lands on the
// same partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	logger.ExternalServiceCall("kafka", "WriteMessages", "topic", p.topic, "type", ev.Type)
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.CarID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	})
	logger.ExternalServiceResult("kafka", "WriteMessages", err)
	if err != nil {
		metrics.EventPublishErrors.WithLabelValues(string(ev.Type)).Inc()
		return fmt.Errorf("failed to write message: %w", err)
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
