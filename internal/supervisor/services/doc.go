// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package services adapts salerec components to suture.Service.
//
// Each wrapper translates a component's lifecycle into Serve(ctx) error and
// implements fmt.Stringer so supervisor events name the service:
//
//   - HTTPServerService: ListenAndServe plus graceful Shutdown
//   - RefreshService: model refresh on startup, on an interval and when
//     new sales marked the engine dirty
//   - IngestService: a NATS sale event consumer
package services
