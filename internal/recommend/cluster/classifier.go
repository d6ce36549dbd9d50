// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package cluster

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
)

// Classifier assigns a preference row to the closest of a fixed set of
// class centers by cosine distance.
type Classifier struct {
	centers *mat.Dense
}

// NewClassifier wraps centers, one class per row.
func NewClassifier(centers *mat.Dense) *Classifier {
	return &Classifier{centers: centers}
}

// ClassIndex returns the row index of the closest center. When no distance
// is defined (a zero row) the first class is returned.
func (c *Classifier) ClassIndex(v []float64) (int, error) {
	_, dim := c.centers.Dims()
	if len(v) != dim {
		return 0, &recommend.DimensionError{Expected: dim, Actual: len(v)}
	}

	sims, err := pairwise.CosineSimilarity(mat.NewDense(1, dim, v), c.centers)
	if err != nil {
		return 0, err
	}

	// Cosine distance lies in [0, 2].
	best, minDist := 0, 2.0
	r, _ := c.centers.Dims()
	for i := 0; i < r; i++ {
		if d := 1 - sims.At(0, i); d < minDist {
			best, minDist = i, d
		}
	}
	return best, nil
}

// Classify returns a copy of the closest center.
func (c *Classifier) Classify(v []float64) ([]float64, error) {
	i, err := c.ClassIndex(v)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, i, c.centers), nil
}
