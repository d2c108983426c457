package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("session-booking", reg)

	m.ObserveTransition("accepted", "paid")
	m.ObserveTransition("accepted", "paid")
	m.ObservePaymentOutcome("failure", "too_many_attempts")
	m.ObserveHTTP("POST", "/api/v1/bookings", "201", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingTransitionsTotal.WithLabelValues("accepted", "paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentOutcomesTotal.WithLabelValues("failure", "too_many_attempts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "201")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("a", "b")
		m.ObservePaymentOutcome("success", "")
		m.ObserveGatewayCall("retrieve", "ok", time.Second)
		m.ObserveSessionEvent("track_published")
		m.ObserveHTTP("GET", "/", "200", time.Second)
	})
}
