// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lostfound_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// StatementsTotal counts executed statements by operation and outcome.
	StatementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_statements_total",
			Help: "Total number of executed SQL statements",
		},
		[]string{"op", "outcome"},
	)
	// StatementDuration is the latency of executed statements.
	StatementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lostfound_statement_duration_seconds",
			Help:    "SQL statement latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)
