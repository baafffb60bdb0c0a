package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequestSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorderWithRegistry(reg)

	rec.ObserveRequest("anthropic", "claude-sonnet-4", "sentiment_analysis",
		100, 20, 0.0006, true, "", 250*time.Millisecond)

	assert.InDelta(t, 100, testutil.ToFloat64(
		rec.tokensTotal.WithLabelValues("anthropic", "claude-sonnet-4", "sentiment_analysis", "input")), 1e-9)
	assert.InDelta(t, 20, testutil.ToFloat64(
		rec.tokensTotal.WithLabelValues("anthropic", "claude-sonnet-4", "sentiment_analysis", "output")), 1e-9)
	assert.InDelta(t, 0.0006, testutil.ToFloat64(
		rec.costsTotal.WithLabelValues("anthropic", "claude-sonnet-4", "sentiment_analysis")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(
		rec.requestsTotal.WithLabelValues("anthropic", "claude-sonnet-4", "sentiment_analysis", "success", "")), 1e-9)
}

func TestObserveRequestFailureSkipsTokens(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorderWithRegistry(reg)

	rec.ObserveRequest("openai", "gpt-4o", "sentiment_analysis",
		100, 20, 0.001, false, "rate_limit", time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(
		rec.requestsTotal.WithLabelValues("openai", "gpt-4o", "sentiment_analysis", "error", "rate_limit")), 1e-9)
	// Failed requests contribute no token or cost counts.
	assert.Zero(t, testutil.ToFloat64(
		rec.tokensTotal.WithLabelValues("openai", "gpt-4o", "sentiment_analysis", "input")))
	assert.Zero(t, testutil.ToFloat64(
		rec.costsTotal.WithLabelValues("openai", "gpt-4o", "sentiment_analysis")))
}
