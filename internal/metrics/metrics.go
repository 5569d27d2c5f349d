// Package metrics holds the prometheus collectors for the API process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsIngested   *prometheus.CounterVec
	AlertsRaised     *prometheus.CounterVec
	WebhookFailures  prometheus.Counter
	ReportsGenerated prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers all collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "traceops_events_ingested_total",
			Help: "Audit events committed, by ingestion mode.",
		}, []string{"mode"}),
		AlertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "traceops_alerts_raised_total",
			Help: "Alerts committed, by alert type.",
		}, []string{"type"}),
		WebhookFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "traceops_webhook_failures_total",
			Help: "Ingestion webhook deliveries that failed and were dropped.",
		}),
		ReportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "traceops_reports_generated_total",
			Help: "Audit packs rendered and stored.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "traceops_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "traceops_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// The helpers below accept a nil receiver so callers never need to check.

func (m *Metrics) EventsCommitted(mode string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EventsIngested.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) AlertCommitted(alertType string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType).Inc()
}

func (m *Metrics) WebhookFailed() {
	if m == nil {
		return
	}
	m.WebhookFailures.Inc()
}

func (m *Metrics) ReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}
