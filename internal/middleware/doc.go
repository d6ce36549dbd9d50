// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package middleware provides the HTTP middleware shared by the API router.

  - RequestID: reuses or generates X-Request-ID and stores it in the
    request context for logging.Ctx
  - PrometheusMetrics: request counts, durations and in-flight gauge,
    labelled by the chi route pattern rather than the raw path so user IDs
    do not explode label cardinality
  - AccessLog: one zerolog line per request

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
