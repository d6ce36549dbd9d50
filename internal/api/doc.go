// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package api exposes the recommendation engine and the sales store over HTTP.

Routes (chi):

	GET  /api/v1/health                                      health summary
	GET  /api/v1/health/live                                 liveness probe
	GET  /api/v1/health/ready                                readiness probe (model built, DB reachable)
	GET  /api/v1/recommendations/{userID}?n=&explain=&explain_n=
	GET  /api/v1/recommendations/{userID}/because/{itemID}?n=
	GET  /api/v1/neighbors/{id}                              user or item neighborhood, per engine mode
	GET  /api/v1/status                                      model and sales statistics
	POST /api/v1/refresh                                     rebuild the model now
	GET  /api/v1/sales?user=&brand=&limit=&offset=
	POST /api/v1/sales                                       store one sale
	GET  /metrics                                            Prometheus

Every JSON endpoint answers with models.APIResponse. Errors carry a
machine-readable code:

	NOT_FOUND          404  unknown user or item
	NOT_READY          503  no model built yet
	VALIDATION_ERROR   400  bad body or parameter
	REFRESH_CONFLICT   409  a refresh is already running
	INSUFFICIENT_DATA  422  too few users to build a model
	INTERNAL_ERROR     500  anything else

Item ids are "brand###product". Clients must URL-escape them in paths.
*/
package api
