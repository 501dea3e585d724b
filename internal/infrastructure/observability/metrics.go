package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Repository method calls
	RepositoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_calls_total",
			Help: "Total number of repository method calls",
		},
		[]string{"method", "status"},
	)

	RepositoryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_duration_seconds",
			Help:    "Duration of repository method calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	Purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase attempts by result",
		},
		[]string{"result"},
	)

	TopupOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_outcomes_total",
			Help: "Top-up state transitions by provider and resulting status",
		},
		[]string{"provider", "status"},
	)

	// Incremented whenever a success topup could not be credited; each one
	// needs operator follow-up if the retry consumer cannot settle it.
	CreditFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_credit_failures_total",
			Help: "Top-ups marked success whose balance credit did not apply",
		},
		[]string{"provider"},
	)

	RejectedNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_notifications_rejected_total",
			Help: "Provider callbacks rejected before any state change",
		},
		[]string{"provider", "reason"},
	)
)

var registerOnce sync.Once

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RepositoryCalls,
			RepositoryDuration,
			HTTPRequests,
			HTTPRequestDuration,
			Purchases,
			TopupOutcomes,
			CreditFailures,
			RejectedNotifications,
		)
	})
}

func RecordHTTPRequest(method, endpoint, status string, seconds float64) {
	HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func RecordPurchase(result string) {
	Purchases.WithLabelValues(result).Inc()
}

func RecordTopupOutcome(provider, status string) {
	TopupOutcomes.WithLabelValues(provider, status).Inc()
}

func RecordCreditFailure(provider string) {
	CreditFailures.WithLabelValues(provider).Inc()
}

func RecordRejectedNotification(provider, reason string) {
	RejectedNotifications.WithLabelValues(provider, reason).Inc()
}
