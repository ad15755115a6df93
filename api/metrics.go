package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector the api exposes on /metrics
var Registry = prometheus.NewRegistry()

var (
	// RequestsTotal counts served requests by route template and status
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "http_requests_total", Help: "Requests served, by method, route and status."},
		[]string{"method", "route", "status"},
	)
	// RequestDuration observes handler latency by route template
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "alumni", Name: "http_request_duration_seconds", Help: "Request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	// StatusChanges counts accepted workflow transitions
	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "status_changes_total", Help: "Workflow status changes by kind and target status."},
		[]string{"kind", "to"},
	)
	// RateLimitDecisions counts limiter outcomes by limiter type
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "rate_limit_decisions_total", Help: "Rate limiter decisions by limiter and result."},
		[]string{"limiter", "result"},
	)
	// EmailsSent counts outgoing mail by template and result
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "emails_sent_total", Help: "Outgoing emails by kind and result."},
		[]string{"kind", "result"},
	)
	// SchedulerRuns counts background job runs by job and result
	SchedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "scheduler_runs_total", Help: "Background job runs by job and result."},
		[]string{"job", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestsTotal,
		RequestDuration,
		StatusChanges,
		RateLimitDecisions,
		EmailsSent,
		SchedulerRuns,
	)
}

// MetricsHandler serves the registry in the prometheus text format
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
