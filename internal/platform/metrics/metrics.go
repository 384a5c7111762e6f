// Package metrics defines the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors. One instance is created at startup
// and injected into the components that record values.
type Metrics struct {
	CacheHits      *prometheus.CounterVec // label: endpoint
	CacheMisses    *prometheus.CounterVec // label: endpoint
	CacheEvictions prometheus.Counter     // rows purged lazily on read
	CacheSwept     prometheus.Counter     // rows removed by bulk sweeps

	ProviderRequests *prometheus.CounterVec // label: operation
	ProviderErrors   *prometheus.CounterVec // label: operation

	LLMRequests prometheus.Counter
	LLMErrors   prometheus.Counter
	LLMMemoHits prometheus.Counter
}

// New registers all collectors with reg and returns them. Pass
// prometheus.DefaultRegisterer in main and a fresh prometheus.NewRegistry()
// in tests so repeated registration does not panic.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_cache_hits_total",
			Help: "Cache reads answered from a fresh row",
		}, []string{"endpoint"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_cache_misses_total",
			Help: "Cache reads that fell through (absent, expired, or storage fault)",
		}, []string{"endpoint"}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_cache_evictions_total",
			Help: "Expired rows deleted lazily at read time",
		}),
		CacheSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_cache_swept_total",
			Help: "Expired rows removed by explicit sweeps",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_provider_requests_total",
			Help: "Outbound market-data provider calls",
		}, []string{"operation"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_provider_errors_total",
			Help: "Failed market-data provider calls",
		}, []string{"operation"}),
		LLMRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_llm_requests_total",
			Help: "Text generation calls sent to the LLM",
		}),
		LLMErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_llm_errors_total",
			Help: "Failed LLM calls",
		}),
		LLMMemoHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_llm_memo_hits_total",
			Help: "LLM calls avoided by the Redis response memo",
		}),
	}

	reg.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheEvictions,
		m.CacheSwept,
		m.ProviderRequests,
		m.ProviderErrors,
		m.LLMRequests,
		m.LLMErrors,
		m.LLMMemoHits,
	)

	return m
}

// The recorder methods below are safe on a nil receiver so components can
// treat metrics as optional.

// RecordCacheHit counts a cache read answered from a fresh row.
func (m *Metrics) RecordCacheHit(endpoint string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheMiss counts a cache read that fell through.
func (m *Metrics) RecordCacheMiss(endpoint string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(endpoint).Inc()
}

// RecordCacheEviction counts a lazy purge of an expired row.
func (m *Metrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}

// RecordCacheSwept counts rows removed by an explicit sweep.
func (m *Metrics) RecordCacheSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheSwept.Add(float64(n))
}

// RecordProviderRequest counts an outbound provider call and, when failed is
// true, the matching error.
func (m *Metrics) RecordProviderRequest(operation string, failed bool) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(operation).Inc()
	if failed {
		m.ProviderErrors.WithLabelValues(operation).Inc()
	}
}

// RecordLLMRequest counts an LLM call and, when failed is true, the error.
func (m *Metrics) RecordLLMRequest(failed bool) {
	if m == nil {
		return
	}
	m.LLMRequests.Inc()
	if failed {
		m.LLMErrors.Inc()
	}
}

// RecordLLMMemoHit counts an LLM call avoided by the response memo.
func (m *Metrics) RecordLLMMemoHit() {
	if m == nil {
		return
	}
	m.LLMMemoHits.Inc()
}
