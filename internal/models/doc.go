// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package models defines the data structures shared between storage, ingestion
and the HTTP API.

  - Sale: one purchase of a brand's product by a user
  - APIResponse, APIError, Metadata: the JSON envelope of every endpoint
*/
package models
