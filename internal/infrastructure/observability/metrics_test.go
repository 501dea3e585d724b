package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequests.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/purchase", "200", 0.2)
	RecordHTTPRequest("POST", "/api/purchase", "200", 0.1)
	RecordHTTPRequest("POST", "/api/purchase", "400", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequests.WithLabelValues("POST", "/api/purchase", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequests.WithLabelValues("POST", "/api/purchase", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordTopupOutcome(t *testing.T) {
	TopupOutcomes.Reset()

	RecordTopupOutcome("card", "success")
	RecordTopupOutcome("momo", "failed")
	RecordTopupOutcome("card", "success")

	assert.Equal(t, float64(2), testutil.ToFloat64(TopupOutcomes.WithLabelValues("card", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(TopupOutcomes.WithLabelValues("momo", "failed")))
}

func TestRecordCreditFailureAndRejections(t *testing.T) {
	CreditFailures.Reset()
	RejectedNotifications.Reset()

	RecordCreditFailure("card")
	RecordRejectedNotification("momo", "signature")

	assert.Equal(t, float64(1), testutil.ToFloat64(CreditFailures.WithLabelValues("card")))
	assert.Equal(t, float64(1), testutil.ToFloat64(RejectedNotifications.WithLabelValues("momo", "signature")))
}

func TestInitMetricsIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}
