package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the surety service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	LedgerOperationsTotal *prometheus.CounterVec
	ActivatedAirlines     prometheus.Gauge
	EscrowBalanceEther    prometheus.Gauge
	PoliciesPurchased     prometheus.Counter
	PayoutsEtherTotal     prometheus.Counter
	OracleResponsesTotal  *prometheus.CounterVec
	FlightsFinalizedTotal *prometheus.CounterVec
	StatusPollDuration    prometheus.Histogram
}

// NewMetricsRegistry creates every metric on reg. A nil reg leaves the
// metrics unregistered, which tests rely on.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "surety_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "surety_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method"},
		),

		// Database Metrics
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_db_queries_total",
				Help: "Total database operations by type and result",
			},
			[]string{"query_type", "result"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "surety_db_query_duration_seconds",
				Help:    "Database operation time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		LedgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_ledger_operations_total",
				Help: "Ledger operations by name and result code",
			},
			[]string{"operation", "result"},
		),
		ActivatedAirlines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surety_activated_airlines",
				Help: "Current number of activated airlines",
			},
		),
		EscrowBalanceEther: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surety_escrow_balance_ether",
				Help: "Pooled escrow balance in ether",
			},
		),
		PoliciesPurchased: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "surety_policies_purchased_total",
				Help: "Total insurance policies sold",
			},
		),
		PayoutsEtherTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "surety_payouts_ether_total",
				Help: "Total ether paid out to passengers",
			},
		),
		OracleResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_oracle_responses_total",
				Help: "Oracle responses by outcome (counted, ignored, finalized)",
			},
			[]string{"outcome"},
		),
		FlightsFinalizedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surety_flights_finalized_total",
				Help: "Flights finalized by status code name",
			},
			[]string{"status"},
		),
		StatusPollDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "surety_status_poll_duration_seconds",
				Help:    "Status poll job execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
	}
}
