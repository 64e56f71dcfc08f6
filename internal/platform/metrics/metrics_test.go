package metrics_test

import (
	"testing"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveAttempt("world_bank", "StoreRates", "success", time.Second)
		m.ObserveExhausted("StoreRates")
		m.RecordUpstreamRequest("world_bank", "2xx", time.Second)
		m.RecordCacheHit("world_bank")
		m.RecordCacheMiss("world_bank")
	})
}

func TestNewMetrics_RegistersFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("", reg)

	m.ObserveAttempt("exchange_rate_api", "StoreRates", "error", 10*time.Millisecond)
	m.ObserveExhausted("StoreRates")
	m.RecordUpstreamRequest("exchange_rate_api", "5xx", 10*time.Millisecond)
	m.RecordCacheHit("world_bank")
	m.RecordCacheMiss("world_bank")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"exchange_rates_service_provider_attempts_total",
		"exchange_rates_service_provider_attempt_duration_seconds",
		"exchange_rates_service_providers_exhausted_total",
		"exchange_rates_service_upstream_requests_total",
		"exchange_rates_service_upstream_request_duration_seconds",
		"exchange_rates_service_cache_hits_total",
		"exchange_rates_service_cache_misses_total",
	} {
		assert.True(t, names[name], "missing metric family %s", name)
	}
}
