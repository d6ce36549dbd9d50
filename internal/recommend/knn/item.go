// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package knn

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
	"github.com/tomtom215/salerec/internal/recommend/similarity"
)

// ItemBased recommends items similar to the ones a user already has.
type ItemBased struct {
	model  recommend.DataModel
	index  *similarity.Index
	size   int
	bounds bounds
	capper bool
	logger zerolog.Logger
}

var _ recommend.Recommender = (*ItemBased)(nil)

// NewItemBased creates an item-based recommender. Item similarities are
// computed with spec over the transposed model and truncated to size
// neighbors per item (0 keeps all).
func NewItemBased(model recommend.DataModel, spec pairwise.Spec, size int, opts ...Option) *ItemBased {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With().Str("component", "knn").Str("mode", "item").Logger()

	// Every item scores against itself, so one extra slot keeps size
	// neighbors once the item is skipped.
	indexSize := size
	if size > 0 {
		indexSize++
	}

	return &ItemBased{
		model:  model,
		index:  similarity.New(model.Transpose(), spec, indexSize, similarity.WithLogger(logger)),
		size:   size,
		bounds: preferenceBounds(model),
		capper: o.capper,
		logger: logger,
	}
}

// Index returns the item similarity index.
func (r *ItemBased) Index() *similarity.Index { return r.index }

// Neighbors returns the items most similar to itemID, itemID excluded.
func (r *ItemBased) Neighbors(ctx context.Context, itemID string) ([]recommend.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := r.index.Lookup(itemID)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Neighbor, 0, len(all))
	for _, n := range all {
		if n.ID != itemID {
			out = append(out, n)
		}
	}
	if r.size > 0 && len(out) > r.size {
		out = out[:r.size]
	}
	return out, nil
}

// EstimatePreference returns the stored preference when the user has one,
// otherwise the item-neighborhood estimate. NaN means no estimate.
func (r *ItemBased) EstimatePreference(ctx context.Context, userID, itemID string) (float64, error) {
	v, err := r.model.PreferenceValue(userID, itemID)
	if err != nil {
		return 0, err
	}
	if hasPreference(r.model, v) {
		return v, nil
	}

	owned, err := r.model.ItemSetFromUser(userID)
	if err != nil {
		return 0, err
	}
	return r.estimate(ctx, userID, itemID, owned)
}

func (r *ItemBased) estimate(ctx context.Context, userID, itemID string, owned []string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	neighbors, err := r.index.Lookup(itemID)
	if err != nil {
		return 0, err
	}
	scores := scoreMap(neighbors)

	acc := accumulator{explicit: r.model.HasPreferenceValues()}
	for _, j := range owned {
		if j == itemID {
			continue
		}
		sim, ok := scores[j]
		if !ok {
			continue
		}
		pref, _ := r.model.PreferenceValue(userID, j)
		acc.add(sim, pref)
	}

	est := acc.estimate()
	if r.capper {
		est = r.bounds.clamp(est)
	}
	return est, nil
}

// Recommend returns up to n items userID does not have, by descending
// estimate. n <= 0 returns every estimable item.
func (r *ItemBased) Recommend(ctx context.Context, userID string, n int) ([]recommend.ScoredItem, error) {
	owned, err := r.model.ItemSetFromUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := unseenItems(r.model, userID)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.ScoredItem, 0, len(items))
	for _, itemID := range items {
		est, err := r.estimate(ctx, userID, itemID, owned)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(est) {
			continue
		}
		out = append(out, recommend.ScoredItem{ItemID: itemID, Score: est})
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("owned", len(owned)).
		Int("candidates", len(items)).
		Int("estimated", len(out)).
		Msg("Item-based recommendation")

	return topItems(out, n), nil
}

// RecommendedBecause returns up to n of userID's items most similar to
// itemID. Explicit models weight similarity by the user's rating.
func (r *ItemBased) RecommendedBecause(ctx context.Context, userID, itemID string, n int) ([]string, error) {
	owned, err := r.model.ItemSetFromUser(userID)
	if err != nil {
		return nil, err
	}
	neighbors, err := r.Neighbors(ctx, itemID)
	if err != nil {
		return nil, err
	}

	has := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		has[id] = struct{}{}
	}

	explicit := r.model.HasPreferenceValues()
	out := make([]ranked, 0, len(owned))
	for _, nb := range neighbors {
		if _, ok := has[nb.ID]; !ok || !nb.Defined() {
			continue
		}
		weight := nb.Score
		if explicit {
			pref, _ := r.model.PreferenceValue(userID, nb.ID)
			weight *= pref
		}
		out = append(out, ranked{id: nb.ID, weight: weight})
	}
	return topIDs(out, n), nil
}

// Warm precomputes every item neighborhood.
func (r *ItemBased) Warm(ctx context.Context, workers int) error {
	return r.index.Warm(ctx, workers)
}
