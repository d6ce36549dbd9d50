// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package logging provides centralized zerolog-based structured logging for Salerec.
//
// JSON output is the default and is meant for production; console output is
// human-readable and meant for development. Two adapters let libraries that
// bring their own logging interface write through the same zerolog logger:
//
//   - SlogHandler for slog consumers such as sutureslog (supervisor events)
//   - WatermillAdapter for Watermill subscribers (sale ingestion)
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("user_id", "u1").Msg("Recommendation served")
//	logging.Error().Err(err).Msg("Model refresh failed")
//
//	// Request-scoped logging
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Msg("Processing")
//
// # Configuration
//
// The logging section of the application config maps onto Config:
//
//	SALEREC_LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	SALEREC_LOG_FORMAT  - json, console (default: json)
//	SALEREC_LOG_CALLER  - include caller file:line (default: false)
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
