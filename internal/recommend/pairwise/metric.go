// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package pairwise

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
)

// Metric names a pairwise similarity function.
type Metric string

const (
	// Euclidean is EuclideanSimilarity; Spec.Squared and Spec.Inverse apply.
	Euclidean Metric = "euclidean"
	// Pearson is PearsonCorrelation.
	Pearson Metric = "pearson"
	// Cosine is CosineSimilarity.
	Cosine Metric = "cosine"
	// LogLikelihood is LogLikelihoodCoefficient over item sets.
	LogLikelihood Metric = "loglikelihood"
)

// VectorFunc is a metric over two preference matrices.
type VectorFunc func(x, y mat.Matrix) (*mat.Dense, error)

// Spec identifies a metric together with its parameters.
//
// Spec is comparable and is used as the cache identity of similarity
// indexes: two indexes built with equal specs compute the same scores.
type Spec struct {
	Metric  Metric `json:"metric"`
	Squared bool   `json:"squared,omitempty"`
	Inverse bool   `json:"inverse,omitempty"`
}

// EuclideanSpec returns the Euclidean spec with the given options.
func EuclideanSpec(opts EuclideanOptions) Spec {
	return Spec{Metric: Euclidean, Squared: opts.Squared, Inverse: opts.Inverse}
}

// ParseMetric maps a configuration name to a Spec.
//
// Accepted names: euclidean, sqeuclidean, euclidean_distance, pearson,
// cosine, loglikelihood (alias llr). Names are case-insensitive.
func ParseMetric(name string) (Spec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "":
		return EuclideanSpec(DefaultEuclideanOptions()), nil
	case "sqeuclidean":
		return EuclideanSpec(EuclideanOptions{Squared: true}), nil
	case "euclidean_distance":
		return EuclideanSpec(EuclideanOptions{}), nil
	case "pearson":
		return Spec{Metric: Pearson}, nil
	case "cosine":
		return Spec{Metric: Cosine}, nil
	case "loglikelihood", "llr":
		return Spec{Metric: LogLikelihood}, nil
	default:
		return Spec{}, fmt.Errorf("%q: %w", name, recommend.ErrUnknownMetric)
	}
}

// String returns a stable, human-readable cache key.
func (s Spec) String() string {
	if s.Metric != Euclidean {
		return string(s.Metric)
	}
	switch {
	case s.Squared:
		return "sqeuclidean"
	case s.Inverse:
		return "euclidean"
	default:
		return "euclidean_distance"
	}
}

// UsesItemSets reports whether the metric compares item sets rather than vectors.
func (s Spec) UsesItemSets() bool {
	return s.Metric == LogLikelihood
}

// Vector returns the vector form of the metric.
// LogLikelihood has no vector form and returns ErrUnknownMetric.
func (s Spec) Vector() (VectorFunc, error) {
	switch s.Metric {
	case Euclidean:
		opts := EuclideanOptions{Squared: s.Squared, Inverse: s.Inverse}
		return func(x, y mat.Matrix) (*mat.Dense, error) {
			return EuclideanSimilarity(x, y, opts)
		}, nil
	case Pearson:
		return PearsonCorrelation, nil
	case Cosine:
		return CosineSimilarity, nil
	default:
		return nil, fmt.Errorf("%q has no vector form: %w", s.Metric, recommend.ErrUnknownMetric)
	}
}
