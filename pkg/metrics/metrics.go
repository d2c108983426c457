package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	BookingTransitionsTotal *prometheus.CounterVec
	PaymentOutcomesTotal    *prometheus.CounterVec
	GatewayCallDuration     *prometheus.HistogramVec
	SessionEventsTotal      *prometheus.CounterVec
}

// New создает и регистрирует метрики в переданном регистре
// Для production передается prometheus.DefaultRegisterer (его отдает promhttp.Handler)
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		BookingTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Applied booking status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),

		PaymentOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_outcomes_total",
			Help:        "Terminal outcomes of payment reconciliation attempts",
			ConstLabels: constLabels,
		}, []string{"result", "reason"}),

		GatewayCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "payment_gateway_call_duration_seconds",
			Help:        "Payment gateway round trip duration",
			ConstLabels: constLabels,
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"operation", "result"}),

		SessionEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "session_events_total",
			Help:        "Session transport events published to the bus",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingTransitionsTotal,
		m.PaymentOutcomesTotal,
		m.GatewayCallDuration,
		m.SessionEventsTotal,
	)

	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveTransition фиксирует переход статуса бронирования
func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.BookingTransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObservePaymentOutcome фиксирует итог попытки оплаты
func (m *Metrics) ObservePaymentOutcome(result, reason string) {
	if m == nil {
		return
	}
	m.PaymentOutcomesTotal.WithLabelValues(result, reason).Inc()
}

// ObserveGatewayCall фиксирует длительность обращения к платежному шлюзу
func (m *Metrics) ObserveGatewayCall(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayCallDuration.WithLabelValues(operation, result).Observe(d.Seconds())
}

// ObserveSessionEvent фиксирует событие видеосессии
func (m *Metrics) ObserveSessionEvent(eventType string) {
	if m == nil {
		return
	}
	m.SessionEventsTotal.WithLabelValues(eventType).Inc()
}
