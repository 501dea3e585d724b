package observability

import (
	"context"
	"net/http"

	"github.com/honeynil/ShopLedgerService/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup installs the process-wide logger, metric collectors and tracer
// provider. The returned func flushes pending spans.
func Setup(serviceName, logLevel, otlpEndpoint string) (func(context.Context) error, http.Handler) {
	observability.InitLogger(logLevel)
	observability.InitMetrics()
	tracerShutdown := observability.InitTracing(serviceName, otlpEndpoint)
	return tracerShutdown, promhttp.Handler()
}
