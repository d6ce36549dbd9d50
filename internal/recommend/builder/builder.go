// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package builder assembles data models and recommenders from engine
// configuration. It is the recommend.Factory used by the server and CLI.
package builder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/datamodel"
	"github.com/tomtom215/salerec/internal/recommend/knn"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
	"github.com/tomtom215/salerec/internal/recommend/strategy"
)

// NewFactory returns a recommend.Factory that logs through logger.
func NewFactory(logger zerolog.Logger) recommend.Factory {
	return func(ctx context.Context, cfg *recommend.Config, prefs recommend.Preferences) (recommend.DataModel, recommend.Recommender, error) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		model := Model(cfg, prefs)
		rec, err := Recommender(cfg, model, logger)
		if err != nil {
			return nil, nil, err
		}
		return model, rec, nil
	}
}

// Model builds the data model selected by cfg.Model.
func Model(cfg *recommend.Config, prefs recommend.Preferences) *datamodel.MatrixModel {
	if cfg.Model == recommend.ModelExplicit {
		return datamodel.NewMatrixModel(datamodel.Samples(prefs))
	}
	return datamodel.NewBooleanModel(datamodel.Samples(prefs))
}

// Recommender builds the recommender selected by cfg.Mode over model.
func Recommender(cfg *recommend.Config, model recommend.DataModel, logger zerolog.Logger) (recommend.Recommender, error) {
	spec, err := pairwise.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("build recommender: %w", err)
	}

	opts := []knn.Option{
		knn.WithLogger(logger.With().Str("component", "knn").Str("mode", cfg.Mode).Logger()),
		knn.WithCapper(cfg.Capper),
	}

	switch cfg.Mode {
	case recommend.ModeItem:
		return knn.NewItemBased(model, spec, cfg.NeighborhoodSize, opts...), nil
	case recommend.ModeUser:
		strat, err := strategy.New(strategy.Config{
			Kind:              strategy.Kind(cfg.Strategy),
			Metric:            cfg.Metric,
			NeighborhoodSize:  cfg.NeighborhoodSize,
			MinimalSimilarity: cfg.MinimalSimilarity,
		}, logger.With().Str("component", "strategy").Logger())
		if err != nil {
			return nil, fmt.Errorf("build recommender: %w", err)
		}
		return knn.NewUserBased(model, strat, spec, opts...), nil
	default:
		return nil, fmt.Errorf("build recommender: unknown mode %q", cfg.Mode)
	}
}
