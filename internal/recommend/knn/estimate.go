// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package knn

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
)

// Option configures a recommender.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	capper bool
}

func defaultOptions() options {
	return options{logger: zerolog.Nop(), capper: true}
}

// WithLogger sets the recommender logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCapper controls clamping of explicit estimates to the range of
// preferences present in the model. Enabled by default.
func WithCapper(enabled bool) Option {
	return func(o *options) { o.capper = enabled }
}

// accumulator folds (similarity, preference) pairs into an estimate.
type accumulator struct {
	explicit bool
	weighted float64
	total    float64
	count    int
}

func (a *accumulator) add(sim, pref float64) {
	if math.IsNaN(sim) || math.IsNaN(pref) {
		return
	}
	a.count++
	if a.explicit {
		a.weighted += sim * pref
		a.total += math.Abs(sim)
		return
	}
	a.total += sim
}

func (a *accumulator) estimate() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	if !a.explicit {
		return a.total / float64(a.count)
	}
	if a.total == 0 {
		return math.NaN()
	}
	return a.weighted / a.total
}

// bounds is the [min, max] preference range of an explicit model.
type bounds struct {
	min, max float64
	ok       bool
}

func preferenceBounds(model recommend.DataModel) bounds {
	if !model.HasPreferenceValues() {
		return bounds{}
	}
	m, ok := model.Matrix().(*mat.Dense)
	if !ok || m.IsEmpty() {
		return bounds{}
	}

	r, c := m.Dims()
	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for _, v := range m.RawRowView(i) {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return bounds{}
	}
	return bounds{min: floats.Min(values), max: floats.Max(values), ok: true}
}

func (b bounds) clamp(v float64) float64 {
	if !b.ok || math.IsNaN(v) {
		return v
	}
	return math.Max(b.min, math.Min(b.max, v))
}

// hasPreference reports whether a stored value means "interacted".
func hasPreference(model recommend.DataModel, v float64) bool {
	if model.HasPreferenceValues() {
		return !math.IsNaN(v)
	}
	return v != 0
}

// unseenItems returns the items userID has no preference for, in model order.
func unseenItems(model recommend.DataModel, userID string) ([]string, error) {
	seen, err := model.ItemSetFromUser(userID)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		skip[id] = struct{}{}
	}

	out := make([]string, 0, model.ItemsCount()-len(seen))
	for _, id := range model.ItemIDs() {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// topItems sorts by descending score, ties by id, and keeps n (n <= 0 keeps all).
func topItems(items []recommend.ScoredItem, n int) []recommend.ScoredItem {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// ranked is an id with a ranking weight, used by explanations.
type ranked struct {
	id     string
	weight float64
}

func topIDs(r []ranked, n int) []string {
	sort.SliceStable(r, func(i, j int) bool { return r[i].weight > r[j].weight })
	if n > 0 && len(r) > n {
		r = r[:n]
	}
	out := make([]string, len(r))
	for i, x := range r {
		out[i] = x.id
	}
	return out
}

func scoreMap(neighbors []recommend.Neighbor) map[string]float64 {
	out := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		out[n.ID] = n.Score
	}
	return out
}
