// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "propertyhub"

var (
	// HTTPRequestTotal counts requests by method, route and status.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10),
		},
		[]string{"method", "route"},
	)

	// AuditEventsTotal counts audit writes by kind and outcome (ok|failed).
	AuditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Audit event writes by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)

	ReportGenerationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_generation_duration_seconds",
			Help:      "Report generation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"report", "outcome"},
	)

	ReportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_rows_total",
			Help:      "Rows emitted by generated reports.",
		},
		[]string{"report"},
	)
)

// RecordAudit increments the audit counter for one write attempt.
func RecordAudit(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	AuditEventsTotal.WithLabelValues(kind, outcome).Inc()
}
