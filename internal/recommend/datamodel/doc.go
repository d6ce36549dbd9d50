// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package datamodel provides in-memory user×item preference matrices.
//
// Two flavors are available:
//
//   - MatrixModel built by NewMatrixModel stores explicit ratings. A user
//     with no opinion on an item holds NaN in that cell, which keeps "not
//     rated" distinct from an explicit zero.
//   - MatrixModel built by NewBooleanModel stores implicit interactions as
//     1 (touched) or 0 (not touched) and keeps a per-user item set for
//     set-based metrics such as the log-likelihood coefficient.
//
// User and item identifiers are sorted on construction so that row and
// column order is stable across builds from the same samples.
//
// Models are immutable after construction and safe for concurrent use.
package datamodel
