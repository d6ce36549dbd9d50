// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Neighborhood Metrics:
  - neighborhood_builds_total: Neighborhood computations (counter)
    Labels: metric
  - neighborhood_build_duration_seconds: Time per computation (histogram)
  - neighborhood_cache_hits_total / neighborhood_cache_misses_total
  - neighborhood_cache_invalidations_total: Whole-cache resets

Recommendation Metrics:
  - recommendation_requests_total: Labels: mode, result
  - recommendation_latency_seconds: Labels: mode
  - model_refreshes_total, model_refresh_duration_seconds
  - model_size: Labels: dimension (users, items)
  - model_version

Ingestion Metrics:
  - sales_ingested_total: Labels: source
  - sales_rejected_total: Labels: source, reason
  - nats_messages_consumed_total, nats_processing_duration_seconds
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

HTTP and Database Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - duckdb_query_duration_seconds, duckdb_query_errors_total

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "sales", time.Since(start), err)

# Thread Safety

All functions are safe for concurrent use. Prometheus collectors handle
their own synchronization.
*/
package metrics
