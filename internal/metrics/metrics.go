/*
Package metrics provides Prometheus metrics for city-hub.

Metrics are registered on the default registry via promauto and exposed by
the HTTP server at /metrics:

	curl http://localhost:8080/metrics

Composer metrics:
  - recommend_compositions_total: compositions by composer and outcome
    (personalized, fallback, anonymous, empty, error)
  - recommend_items_returned: items per composition (histogram)
  - recommend_data_call_duration_seconds: catalog/event-log call latency
    Labels: operation, result

Tracking metrics:
  - learning_events_tracked_total / learning_events_dropped_total
  - profile_interest_evictions_total: tags evicted by decay

Circuit breaker metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total

API metrics:
  - api_requests_total, api_request_duration_seconds
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Composer Metrics
	Compositions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_compositions_total",
			Help: "Total number of compositions by composer and outcome",
		},
		[]string{"composer", "outcome"},
	)

	ItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_items_returned",
			Help:    "Number of items or sections returned per composition",
			Buckets: []float64{0, 1, 3, 5, 7, 10, 15},
		},
		[]string{"composer"},
	)

	DataCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_data_call_duration_seconds",
			Help:    "Latency of catalog and event-log calls made by composers",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 3},
		},
		[]string{"operation", "result"},
	)

	// Tracking Metrics
	EventsTracked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learning_events_tracked_total",
			Help: "Total number of user events written to the event log",
		},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_events_dropped_total",
			Help: "Total number of user events dropped before reaching the event log",
		},
		[]string{"reason"}, // queue_full, write_error
	)

	InterestEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_interest_evictions_total",
			Help: "Total number of interest tags evicted after decay",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordComposition records the outcome of one composer run.
func RecordComposition(composer, outcome string, count int) {
	Compositions.WithLabelValues(composer, outcome).Inc()
	ItemsReturned.WithLabelValues(composer).Observe(float64(count))
}

// RecordDataCall records a composer's data access call.
func RecordDataCall(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	DataCallDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition updates breaker gauges on a state change.
// States use gobreaker's String() names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
