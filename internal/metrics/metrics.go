package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// Matcher metrics
	MatchDurationSeconds prometheus.Histogram
	MatchConfidence      prometheus.Histogram

	// Embedding provider metrics
	EmbeddingRequestsTotal   *prometheus.CounterVec
	EmbeddingDurationSeconds *prometheus.HistogramVec

	// Embedding cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Conversation context metrics
	ContextStoreEntries prometheus.Gauge
	ContextEvictedTotal prometheus.Counter

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterActive  *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_chat_requests_total",
				Help: "Total number of chat requests by outcome and status",
			},
			[]string{"outcome", "status"}, // outcome: social, meta, academic, low_confidence, empty; status: success, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_chat_duration_seconds",
				Help:    "Chat request processing duration in seconds by outcome",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"outcome"},
		),

		MatchDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_match_duration_seconds",
				Help:    "Intent matching duration in seconds (including query embedding)",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		),

		MatchConfidence: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_match_confidence",
				Help:    "Cosine similarity score of the best matched intent",
				Buckets: []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
		),

		EmbeddingRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_embedding_requests_total",
				Help: "Total number of embedding provider requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		EmbeddingDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_embedding_duration_seconds",
				Help:    "Embedding provider request duration in seconds by provider",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_cache_hits_total",
				Help: "Total number of embedding cache hits by scope",
			},
			[]string{"scope"}, // scope: corpus
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_cache_misses_total",
				Help: "Total number of embedding cache misses by scope",
			},
			[]string{"scope"},
		),

		ContextStoreEntries: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "chatbot_context_store_entries",
				Help: "Current number of per-user conversation context entries",
			},
		),

		ContextEvictedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chatbot_context_evicted_total",
				Help: "Total number of conversation context entries evicted",
			},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiting by limiter name",
			},
			[]string{"name"},
		),

		RateLimiterActive: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chatbot_rate_limiter_active_keys",
				Help: "Current number of active per-key rate limiter buckets by limiter name",
			},
			[]string{"name"},
		),
	}

	return m
}

// RecordChatRequest increments the chat request counter.
func (m *Metrics) RecordChatRequest(outcome, status string) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(outcome, status).Inc()
}

// RecordChatDuration observes chat processing duration.
func (m *Metrics) RecordChatDuration(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ChatDurationSeconds.WithLabelValues(outcome).Observe(seconds)
}

// RecordMatch observes matching duration and the resulting confidence.
func (m *Metrics) RecordMatch(seconds, confidence float64) {
	if m == nil {
		return
	}
	m.MatchDurationSeconds.Observe(seconds)
	m.MatchConfidence.Observe(confidence)
}

// RecordEmbedding records one embedding provider call.
func (m *Metrics) RecordEmbedding(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.EmbeddingRequestsTotal.WithLabelValues(provider, status).Inc()
	m.EmbeddingDurationSeconds.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit(scope string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(scope).Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss(scope string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(scope).Inc()
}

// SetContextStoreEntries updates the context store size gauge.
func (m *Metrics) SetContextStoreEntries(count int) {
	if m == nil {
		return
	}
	m.ContextStoreEntries.Set(float64(count))
}

// RecordContextEvicted adds evicted context entries to the counter.
func (m *Metrics) RecordContextEvicted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ContextEvictedTotal.Add(float64(count))
}

// RecordRateLimiterDrop increments the dropped request counter for a limiter.
func (m *Metrics) RecordRateLimiterDrop(name string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(name).Inc()
}

// SetRateLimiterActive updates the active bucket gauge for a limiter.
func (m *Metrics) SetRateLimiterActive(name string, count int) {
	if m == nil {
		return
	}
	m.RateLimiterActive.WithLabelValues(name).Set(float64(count))
}
