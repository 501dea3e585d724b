package postgres

import (
	"context"
	"time"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startCall opens a span for a repository method and returns a finisher that
// records the outcome in the span and the repository metrics.
func startCall(ctx context.Context, tracerName, method string) (context.Context, trace.Span, func(*error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method)
	start := time.Now()
	return ctx, span, func(errp *error) {
		status := "success"
		if errp != nil && *errp != nil {
			status = "error"
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		observability.RepositoryCalls.WithLabelValues(method, status).Inc()
		observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		span.End()
	}
}

// jsonArg turns a raw provider payload into a query argument. Empty payloads
// become "" so that COALESCE(NULLIF($n, '')::jsonb, raw) keeps the stored value.
func jsonArg(raw []byte) string {
	return string(raw)
}
