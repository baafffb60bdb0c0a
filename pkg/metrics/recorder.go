// Package metrics provides Prometheus-based recording and querying for
// request telemetry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder abstracts the telemetry sink so tests can observe requests
// without a live Prometheus registry.
type Recorder interface {
	ObserveRequest(provider, model, operation string, inputTokens, outputTokens int, cost float64, success bool, errorType string, duration time.Duration)
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	costsTotal      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder registered on the default
// Prometheus registry. Call it at most once per process.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWithRegistry creates a recorder on a caller-supplied
// registry.
func NewPrometheusRecorderWithRegistry(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM requests by provider, model, operation, and status",
			},
			[]string{"provider", "model", "operation", "status", "error_type"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Total number of tokens used in LLM requests",
			},
			[]string{"provider", "model", "operation", "type"},
		),
		costsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_costs_total",
				Help: "Total estimated cost in USD for LLM requests",
			},
			[]string{"provider", "model", "operation"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Duration of LLM requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model", "operation"},
		),
	}
}

// ObserveRequest records metrics for one completed LLM request.
func (p *PrometheusRecorder) ObserveRequest(
	provider, model, operation string,
	inputTokens, outputTokens int,
	cost float64,
	success bool,
	errorType string,
	duration time.Duration,
) {
	status := "success"
	if !success {
		status = "error"
	}

	p.requestsTotal.WithLabelValues(provider, model, operation, status, errorType).Inc()

	// Tokens and costs only count on success.
	if success {
		p.tokensTotal.WithLabelValues(provider, model, operation, "input").Add(float64(inputTokens))
		p.tokensTotal.WithLabelValues(provider, model, operation, "output").Add(float64(outputTokens))
		p.costsTotal.WithLabelValues(provider, model, operation).Add(cost)
	}

	p.requestDuration.WithLabelValues(provider, model, operation).Observe(duration.Seconds())
}
