package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwapsTotal counts swap executions by outcome
	SwapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpay_swaps_total",
			Help: "Total number of swap executions",
		},
		[]string{"status"},
	)

	// SwapAmount tracks the source-token amount of executed swaps
	SwapAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coinpay_swap_amount",
			Help:    "Source token amount of executed swaps",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"from_token", "to_token"},
	)

	// QuoteDuration tracks quote assembly time
	QuoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coinpay_quote_duration_seconds",
			Help:    "Swap quote assembly duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AggregatorRequests counts outbound DEX aggregator requests by endpoint and result
	AggregatorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpay_aggregator_requests_total",
			Help: "Total number of DEX aggregator API requests",
		},
		[]string{"provider", "endpoint", "result"},
	)

	// CircuitBreakerState reports the aggregator circuit breaker state (0 closed, 1 half-open, 2 open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coinpay_aggregator_circuit_state",
			Help: "DEX aggregator circuit breaker state",
		},
		[]string{"provider"},
	)

	// FeeCollectionsTotal counts platform fee collection attempts by outcome
	FeeCollectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpay_fee_collections_total",
			Help: "Total number of platform fee collection attempts",
		},
		[]string{"result"},
	)

	// FeeQueueDepth tracks the number of queued fee collection tasks
	FeeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coinpay_fee_queue_depth",
			Help: "Number of fee collection tasks waiting in the queue",
		},
	)
)
