package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream request outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeHTTPError   = "http_error"
	OutcomeDecodeError = "decode_error"
	OutcomeTransport   = "transport_error"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_explorer",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to upstream APIs",
		},
		[]string{"provider", "outcome"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wallet_explorer",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"provider"},
	)

	upstreamCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_explorer",
			Name:      "upstream_cache_lookups_total",
			Help:      "Upstream response cache lookups by result",
		},
		[]string{"provider", "result"},
	)

	aggregationPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wallet_explorer",
			Name:      "token_aggregation_pages",
			Help:      "Number of upstream pages fetched per token balance aggregation",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 20},
		},
	)

	normalizerDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet_explorer",
			Name:      "token_normalizer_dropped_total",
			Help:      "Token balances dropped during normalization by reason",
		},
		[]string{"reason"},
	)
)

// ObserveUpstreamRequest records one upstream request
func ObserveUpstreamRequest(provider, outcome string, duration time.Duration) {
	upstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	upstreamRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache hit or miss
func ObserveCacheLookup(provider string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	upstreamCacheTotal.WithLabelValues(provider, result).Inc()
}

// ObserveAggregation records how many pages an aggregation fetched
func ObserveAggregation(pages int) {
	aggregationPages.Observe(float64(pages))
}

// ObserveDropped records entries dropped by the normalizer
func ObserveDropped(reason string, count int) {
	if count == 0 {
		return
	}
	normalizerDroppedTotal.WithLabelValues(reason).Add(float64(count))
}
