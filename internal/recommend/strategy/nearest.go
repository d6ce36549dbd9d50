// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package strategy

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
	"github.com/tomtom215/salerec/internal/recommend/similarity"
)

// NearestCandidates returns the neighbors an index ranks highest.
//
// The index is sized one above the neighborhood size so that the anchor,
// which scores against itself, does not take a neighbor's slot.
type NearestCandidates struct {
	logger zerolog.Logger

	mu      sync.Mutex
	spec    pairwise.Spec
	size    int
	minimal float64
	index   *similarity.Index
}

// NewNearest creates a NearestCandidates strategy. size <= 0 means unbounded.
func NewNearest(spec pairwise.Spec, size int, minimal float64, logger zerolog.Logger) *NearestCandidates {
	if size < 0 {
		size = 0
	}
	return &NearestCandidates{
		logger:  logger.With().Str("component", "strategy").Logger(),
		spec:    spec,
		size:    size,
		minimal: minimal,
	}
}

// Name returns "nearest".
func (n *NearestCandidates) Name() string { return string(KindNearest) }

// Spec returns the metric in use.
func (n *NearestCandidates) Spec() pairwise.Spec {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.spec
}

// Reconfigure changes the metric, size and threshold. The owned index is
// reconfigured on the next call to Candidates.
func (n *NearestCandidates) Reconfigure(spec pairwise.Spec, size int, minimal float64) {
	if size < 0 {
		size = 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spec, n.size, n.minimal = spec, size, minimal
}

// Candidates returns the identifiers whose score against anchor is defined
// and at least the minimal similarity, in descending score order.
func (n *NearestCandidates) Candidates(ctx context.Context, anchor string, model recommend.DataModel) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix, minimal := n.indexFor(model)

	neighbors, err := ix.Lookup(anchor)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(neighbors))
	for _, nb := range neighbors {
		if nb.ID == anchor || !nb.Defined() || nb.Score < minimal {
			continue
		}
		out = append(out, nb.ID)
	}
	return out, nil
}

// Index returns the index for model under the current configuration.
func (n *NearestCandidates) Index(model recommend.DataModel) *similarity.Index {
	ix, _ := n.indexFor(model)
	return ix
}

// indexFor reuses the owned index when model is unchanged, reconfiguring
// it if needed, and builds a new one otherwise.
func (n *NearestCandidates) indexFor(model recommend.DataModel) (*similarity.Index, float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	size := n.size
	if size > 0 {
		size++
	}

	if n.index == nil || n.index.Model() != model {
		n.logger.Debug().
			Str("metric", n.spec.String()).
			Int("size", n.size).
			Msg("Building similarity index")
		n.index = similarity.New(model, n.spec, size, similarity.WithLogger(n.logger))
		return n.index, n.minimal
	}

	n.index.Reconfigure(n.spec, size)
	return n.index, n.minimal
}
