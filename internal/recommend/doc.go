// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package recommend implements neighborhood-based recommendations over
// sales records.
//
// # Architecture
//
// Sales are turned into a user×item preference matrix and recommendations
// are produced by finding similar users or items:
//
//   - datamodel: preference matrices (explicit ratings or boolean purchases)
//   - pairwise: similarity metrics (Euclidean, Pearson, Cosine, log-likelihood)
//   - similarity: cached, ordered neighborhoods per anchor
//   - strategy: candidate neighbor selection (all others or nearest n)
//   - knn: user-based and item-based recommenders
//   - cluster: k-means grouping and nearest-center classification
//
// This package holds the shared types and the Engine, which keeps the
// current model snapshot and refreshes it from a DataProvider.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	engine.SetDataProvider(db)
//	engine.SetFactory(factory)
//	if err := engine.Refresh(ctx); err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: "13735329805", N: 3})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Refresh builds the next snapshot
// without holding the read path and swaps it in under a write lock.
package recommend
