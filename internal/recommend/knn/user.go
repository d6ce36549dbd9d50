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
	"github.com/tomtom215/salerec/internal/recommend/strategy"
)

// UserBased recommends items that similar users have.
type UserBased struct {
	model    recommend.DataModel
	strategy strategy.Strategy
	index    *similarity.Index
	bounds   bounds
	capper   bool
	logger   zerolog.Logger
}

var _ recommend.Recommender = (*UserBased)(nil)

// NewUserBased creates a user-based recommender. Candidates come from strat;
// their similarity to the target user is measured with spec.
func NewUserBased(model recommend.DataModel, strat strategy.Strategy, spec pairwise.Spec, opts ...Option) *UserBased {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With().Str("component", "knn").Str("mode", "user").Logger()

	// Share the strategy's index when it already scores with spec.
	var index *similarity.Index
	if nearest, ok := strat.(*strategy.NearestCandidates); ok && nearest.Spec() == spec {
		index = nearest.Index(model)
	} else {
		index = similarity.New(model, spec, 0, similarity.WithLogger(logger))
	}

	return &UserBased{
		model:    model,
		strategy: strat,
		index:    index,
		bounds:   preferenceBounds(model),
		capper:   o.capper,
		logger:   logger,
	}
}

// Neighbors returns the candidate users of userID with their similarity.
func (u *UserBased) Neighbors(ctx context.Context, userID string) ([]recommend.Neighbor, error) {
	if !u.model.HasUser(userID) {
		return nil, recommend.NotFoundError("user", userID)
	}

	candidates, err := u.strategy.Candidates(ctx, userID, u.model)
	if err != nil {
		return nil, err
	}

	all, err := u.index.Lookup(userID)
	if err != nil {
		return nil, err
	}
	scores := scoreMap(all)

	out := make([]recommend.Neighbor, 0, len(candidates))
	for _, id := range candidates {
		score, ok := scores[id]
		if !ok {
			score = math.NaN()
		}
		out = append(out, recommend.Neighbor{ID: id, Score: score})
	}
	return similarity.Rank(out, 0), nil
}

// EstimatePreference returns the stored preference when the user has one,
// otherwise the neighborhood estimate. NaN means no estimate.
func (u *UserBased) EstimatePreference(ctx context.Context, userID, itemID string) (float64, error) {
	v, err := u.model.PreferenceValue(userID, itemID)
	if err != nil {
		return 0, err
	}
	if hasPreference(u.model, v) {
		return v, nil
	}

	neighbors, err := u.Neighbors(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.estimate(neighbors, itemID), nil
}

func (u *UserBased) estimate(neighbors []recommend.Neighbor, itemID string) float64 {
	acc := accumulator{explicit: u.model.HasPreferenceValues()}
	for _, n := range neighbors {
		if !n.Defined() {
			continue
		}
		// Neighbor ids come from the model; the lookup cannot miss.
		pref, _ := u.model.PreferenceValue(n.ID, itemID)
		if !hasPreference(u.model, pref) {
			continue
		}
		acc.add(n.Score, pref)
	}

	est := acc.estimate()
	if u.capper {
		est = u.bounds.clamp(est)
	}
	return est
}

// Recommend returns up to n items userID has not interacted with, by
// descending estimate. n <= 0 returns every estimable item.
func (u *UserBased) Recommend(ctx context.Context, userID string, n int) ([]recommend.ScoredItem, error) {
	neighbors, err := u.Neighbors(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := unseenItems(u.model, userID)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.ScoredItem, 0, len(items))
	for _, itemID := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		est := u.estimate(neighbors, itemID)
		if math.IsNaN(est) {
			continue
		}
		out = append(out, recommend.ScoredItem{ItemID: itemID, Score: est})
	}

	u.logger.Debug().
		Str("user_id", userID).
		Int("neighbors", len(neighbors)).
		Int("candidates", len(items)).
		Int("estimated", len(out)).
		Msg("User-based recommendation")

	return topItems(out, n), nil
}

// RecommendedBecause returns up to n neighbor users that have itemID,
// ranked by their contribution to the estimate.
func (u *UserBased) RecommendedBecause(ctx context.Context, userID, itemID string, n int) ([]string, error) {
	if _, err := u.model.PreferenceValue(userID, itemID); err != nil {
		return nil, err
	}

	neighbors, err := u.Neighbors(ctx, userID)
	if err != nil {
		return nil, err
	}

	r := make([]ranked, 0, len(neighbors))
	for _, nb := range neighbors {
		if !nb.Defined() {
			continue
		}
		pref, _ := u.model.PreferenceValue(nb.ID, itemID)
		if !hasPreference(u.model, pref) {
			continue
		}
		r = append(r, ranked{id: nb.ID, weight: nb.Score * pref})
	}
	return topIDs(r, n), nil
}

// Warm precomputes every user neighborhood.
func (u *UserBased) Warm(ctx context.Context, workers int) error {
	return u.index.Warm(ctx, workers)
}
