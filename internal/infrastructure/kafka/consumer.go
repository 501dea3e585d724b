package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"github.com/honeynil/ShopLedgerService/internal/repository"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CreditRetryConsumer reads ledger events and re-applies credits for top-ups
// that reached success without their balance increment landing.
type CreditRetryConsumer struct {
	reader     messageReader
	topupRepo  repository.TopupRepository
	retryDelay time.Duration
}

const readRetryDelay = time.Second

func NewCreditRetryConsumer(brokers []string, topic, groupID string, topupRepo repository.TopupRepository) *CreditRetryConsumer {
	return &CreditRetryConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		topupRepo:  topupRepo,
		retryDelay: readRetryDelay,
	}
}

func (c *CreditRetryConsumer) Consume(ctx context.Context) {
	delay := c.retryDelay
	if delay <= 0 {
		delay = readRetryDelay
	}
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				slog.Info("credit retry consumer stopped")
				return
			}
			slog.Error("failed to read Kafka message", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				slog.Info("credit retry consumer stopped")
				return
			case <-time.After(delay):
			}
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *CreditRetryConsumer) handle(ctx context.Context, msg kafka.Message) {
	var event models.LedgerEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("failed to unmarshal ledger event", "key", string(msg.Key), "error", err)
		return
	}
	if event.Type != models.EventTopupCreditFailed || event.TopupID == "" {
		return
	}

	result, err := c.topupRepo.RetryCredit(ctx, event.TopupID)
	if err != nil {
		observability.RecordCreditFailure(event.Provider)
		slog.Error("credit retry failed", "topup_id", event.TopupID, "user_id", event.UserID, "error", err)
		return
	}
	if !result.Applied {
		slog.Info("credit retry skipped", "topup_id", event.TopupID)
		return
	}
	slog.Info("credit retry applied", "topup_id", event.TopupID, "user_id", result.UserID, "amount", result.Amount, "new_balance", result.NewBalance)
}

func (c *CreditRetryConsumer) Close() error {
	return c.reader.Close()
}
