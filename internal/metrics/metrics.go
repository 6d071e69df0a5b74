// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Seafile API
	SeafileRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seafile_api_requests_total",
			Help: "Total number of Seafile API requests",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, request_error, connection_error
	)

	SeafileRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seafile_api_request_duration_seconds",
			Help:    "Duration of Seafile API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Updater
	UpdaterCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seafile_updater_cycles_total",
			Help: "Total number of update cycles by outcome code",
		},
		[]string{"account", "code"},
	)

	UpdaterCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seafile_updater_cycle_duration_seconds",
			Help:    "Duration of update cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"account"},
	)

	AccountReachable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seafile_account_reachable",
			Help: "1 when the last update cycle succeeded, 0 otherwise",
		},
		[]string{"account"},
	)

	RegisteredSensors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seafile_registered_sensors",
			Help: "Number of sensor descriptors registered for an account",
		},
		[]string{"account"},
	)

	// HTTP surface
	ThumbnailRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seafile_thumbnail_requests_total",
			Help: "Total number of thumbnail proxy requests by result",
		},
		[]string{"result"}, // served, not_found
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// ObserveRequest records one Seafile API call.
func ObserveRequest(endpoint, outcome string, d time.Duration) {
	SeafileRequests.WithLabelValues(endpoint, outcome).Inc()
	SeafileRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCycle records one update cycle and the resulting reachability.
func ObserveCycle(account string, code int, reachable bool, d time.Duration) {
	UpdaterCycles.WithLabelValues(account, codeLabel(code)).Inc()
	UpdaterCycleDuration.WithLabelValues(account).Observe(d.Seconds())
	if reachable {
		AccountReachable.WithLabelValues(account).Set(1)
	} else {
		AccountReachable.WithLabelValues(account).Set(0)
	}
}

func codeLabel(code int) string {
	switch code {
	case 200:
		return "200"
	case 403:
		return "403"
	case 404:
		return "404"
	default:
		return "other"
	}
}
