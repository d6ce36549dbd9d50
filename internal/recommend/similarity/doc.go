// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package similarity computes and caches ordered neighborhoods.
//
// An Index wraps a recommend.DataModel and a pairwise.Spec. For an anchor
// row it scores every row of the model, the anchor included, and keeps the
// result sorted by descending score. Undefined (NaN) scores sort last and
// never count towards the neighborhood size.
//
// # Cache Discipline
//
// Neighborhoods are cached per anchor for the current (metric, size)
// configuration. Reconfigure with a different configuration drops the whole
// cache. Lookups of the same anchor that race share one build.
//
// The cache is not invalidated when the data model changes underneath it.
// Callers that swap models build a new Index.
package similarity
