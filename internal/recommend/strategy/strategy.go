// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package strategy selects the candidate neighbors of an anchor.
//
// Two strategies are provided:
//
//   - AllCandidates returns every other row of the data model.
//   - NearestCandidates returns the most similar rows according to a
//     similarity.Index, above a minimal similarity.
//
// Use New to pick one from configuration.
package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
)

// Kind names a candidate selection policy.
type Kind string

const (
	// KindAll selects every other identifier.
	KindAll Kind = "all"
	// KindNearest selects the nearest identifiers by similarity.
	KindNearest Kind = "nearest"
)

// Strategy produces candidate neighbor identifiers for an anchor.
type Strategy interface {
	// Candidates returns the neighbor candidates of anchor in model.
	// The anchor itself is never part of the result.
	Candidates(ctx context.Context, anchor string, model recommend.DataModel) ([]string, error)

	// Name identifies the strategy in logs and metadata.
	Name() string
}

// Config selects and parameterizes a Strategy.
type Config struct {
	// Kind is "all" or "nearest". Empty selects "nearest".
	Kind Kind `koanf:"kind" validate:"omitempty,oneof=all nearest"`

	// Metric is a pairwise metric name accepted by pairwise.ParseMetric.
	Metric string `koanf:"metric"`

	// NeighborhoodSize bounds the neighborhood. 0 means unbounded.
	NeighborhoodSize int `koanf:"neighborhood_size" validate:"gte=0"`

	// MinimalSimilarity drops neighbors scoring below it.
	MinimalSimilarity float64 `koanf:"minimal_similarity"`
}

// New builds the strategy described by cfg.
func New(cfg Config, logger zerolog.Logger) (Strategy, error) {
	switch Kind(strings.ToLower(string(cfg.Kind))) {
	case KindAll:
		return AllCandidates{}, nil
	case KindNearest, "":
		spec, err := pairwise.ParseMetric(cfg.Metric)
		if err != nil {
			return nil, err
		}
		return NewNearest(spec, cfg.NeighborhoodSize, cfg.MinimalSimilarity, logger), nil
	default:
		return nil, fmt.Errorf("unknown candidate strategy %q", cfg.Kind)
	}
}

// AllCandidates returns every identifier of the model except the anchor.
// It does not scale to large models.
type AllCandidates struct{}

// Name returns "all".
func (AllCandidates) Name() string { return string(KindAll) }

// Candidates returns every other identifier in model order. An empty model
// yields an empty slice; otherwise an anchor unknown to the model is
// ErrNotFound.
func (AllCandidates) Candidates(ctx context.Context, anchor string, model recommend.DataModel) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := model.UserIDs()
	if len(ids) == 0 {
		return []string{}, nil
	}
	if !model.HasUser(anchor) {
		return nil, recommend.NotFoundError("anchor", anchor)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != anchor {
			out = append(out, id)
		}
	}
	return out, nil
}
