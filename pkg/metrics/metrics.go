package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes per-route latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AlertsTotal counts processed alerts by terminal outcome.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emergency_alerts_total",
		Help: "Emergency alerts by pipeline outcome",
	}, []string{"outcome"})

	// AlertStageDuration observes per-stage pipeline latency.
	AlertStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "emergency_alert_stage_duration_seconds",
		Help:    "Latency of each alert pipeline stage",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"stage"})

	// SMSSentTotal counts dispatch attempts by result.
	SMSSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emergency_sms_sent_total",
		Help: "SMS dispatch attempts",
	}, []string{"status"})
)

// Pipeline outcome label values.
const (
	OutcomeCompleted           = "completed"
	OutcomeDeviceNotRegistered = "device_not_registered"
	OutcomeNoContacts          = "no_contacts"
	OutcomeTranscriptionFailed = "transcription_failed"
	OutcomeAuditFailed         = "audit_failed"
	OutcomeLookupFailed        = "lookup_failed"
)
