package service

import (
	"context"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/kafka"
	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/honeynil/ShopLedgerService/internal/models"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// publish emits event after its change has committed. Failures are logged
// only; the ledger is already correct without the event.
func publish(ctx context.Context, publisher kafka.EventPublisher, event models.LedgerEvent) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		observability.WithContext(ctx, "type", event.Type, "user_id", event.UserID).Error("failed to publish ledger event", "error", err)
	}
}

func spanError(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
