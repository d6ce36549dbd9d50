// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Neighborhood Metrics
	NeighborhoodBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborhood_builds_total",
			Help: "Total number of similarity neighborhoods computed",
		},
		[]string{"metric"},
	)

	NeighborhoodBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neighborhood_build_duration_seconds",
			Help:    "Time to compute one similarity neighborhood",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"metric"},
	)

	NeighborhoodCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborhood_cache_hits_total",
			Help: "Total number of neighborhood lookups served from cache",
		},
		[]string{"metric"},
	)

	NeighborhoodCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborhood_cache_misses_total",
			Help: "Total number of neighborhood lookups that required a build",
		},
		[]string{"metric"},
	)

	NeighborhoodInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neighborhood_cache_invalidations_total",
			Help: "Total number of whole-cache invalidations caused by reconfiguration",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "result"},
	)

	RecommendationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Recommendation computation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	ModelRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_refreshes_total",
			Help: "Total number of data model refreshes",
		},
		[]string{"result"},
	)

	ModelRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_refresh_duration_seconds",
			Help:    "Time to load sales and rebuild the data model",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	ModelSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_size",
			Help: "Number of users and items in the current data model",
		},
		[]string{"dimension"},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the current data model",
		},
	)

	// Ingestion Metrics
	SalesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_ingested_total",
			Help: "Total number of sale records written",
		},
		[]string{"source"},
	)

	SalesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_rejected_total",
			Help: "Total number of sale records rejected before storage",
		},
		[]string{"source", "reason"},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Time to process a consumed sale event",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
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

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordNeighborhoodBuild records one neighborhood computation.
func RecordNeighborhoodBuild(metric string, duration time.Duration) {
	NeighborhoodBuilds.WithLabelValues(metric).Inc()
	NeighborhoodBuildDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

// RecordNeighborhoodLookup records a cache hit or miss.
func RecordNeighborhoodLookup(metric string, hit bool) {
	if hit {
		NeighborhoodCacheHits.WithLabelValues(metric).Inc()
		return
	}
	NeighborhoodCacheMisses.WithLabelValues(metric).Inc()
}

// RecordRecommendation records a recommendation request outcome.
func RecordRecommendation(mode string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	RecommendationRequests.WithLabelValues(mode, result).Inc()
	RecommendationLatency.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordModelRefresh records a model refresh and the resulting model size.
func RecordModelRefresh(duration time.Duration, version, users, items int, err error) {
	ModelRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		ModelRefreshes.WithLabelValues("error").Inc()
		return
	}
	ModelRefreshes.WithLabelValues("success").Inc()
	ModelVersion.Set(float64(version))
	ModelSize.WithLabelValues("users").Set(float64(users))
	ModelSize.WithLabelValues("items").Set(float64(items))
}

// RecordSalesIngested adds n written sales for a source ("nats", "csv", "parquet").
func RecordSalesIngested(source string, n int) {
	SalesIngested.WithLabelValues(source).Add(float64(n))
}

// RecordSaleRejected records a sale dropped before storage.
func RecordSaleRejected(source, reason string) {
	SalesRejected.WithLabelValues(source, reason).Inc()
}

// RecordNATSConsume records one consumed message and its handling time.
func RecordNATSConsume(duration time.Duration) {
	NATSMessagesConsumed.Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordCircuitBreakerRequest records the outcome of a call through a breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a state change. States are the
// gobreaker names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
}

func stateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// FormatStatus converts an HTTP status code to a label value.
func FormatStatus(code int) string {
	return strconv.Itoa(code)
}
