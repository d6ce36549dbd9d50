// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package knn implements neighborhood-based collaborative filtering.
//
// # User-Based
//
// UserBased asks a strategy.Strategy for the neighbors of the target user
// and estimates a preference for each item the user has not touched:
//
//	score(u, i) = sum_{v in N(u)} sim(u, v) * r(v, i) / sum_{v in N(u)} |sim(u, v)|
//
// where N(u) holds the neighbors that rated i.
//
// # Item-Based
//
// ItemBased scores an item by its similarity to the items the user already
// has, using a similarity.Index over the item-major view of the model:
//
//	score(u, i) = sum_{j in I(u)} sim(i, j) * r(u, j) / sum_{j in I(u)} |sim(i, j)|
//
// # Boolean Models
//
// Without explicit ratings every r is 1 and the weighted average above is
// always 1. Boolean models therefore score with the mean similarity of the
// contributing neighbors instead.
//
// Undefined (NaN) similarities never contribute. An item with no
// contributing neighbor has no estimate and is not recommended.
//
// # Explanations
//
// RecommendedBecause returns the ids that contributed most to an estimate:
// neighbor users for UserBased, the user's own items for ItemBased.
package knn
