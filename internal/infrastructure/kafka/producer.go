package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=producer.go -destination=mocks/mock_producer.go -package=mocks

// EventPublisher emits ledger events after the change they describe has
// committed. Delivery is best effort; a publish failure never undoes a
// balance change.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, topic: topic}
}

// Events for one user hash to one partition, so consumers see them in order.
func (p *Producer) Publish(ctx context.Context, event models.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Error("failed to send Kafka message", "topic", p.topic, "type", event.Type, "user_id", event.UserID, "error", err)
		return err
	}
	slog.Info("Kafka message sent", "topic", p.topic, "type", event.Type, "user_id", event.UserID)
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		slog.Error("failed to close Kafka writer", "error", err)
		return err
	}
	slog.Info("Kafka writer closed")
	return nil
}

// NopPublisher drops events. It stands in when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.LedgerEvent) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
