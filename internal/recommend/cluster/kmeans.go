// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package cluster groups preference rows with k-means and assigns new
// rows to the nearest cluster center.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrTooFewSamples is returned when there are fewer rows than clusters.
var ErrTooFewSamples = errors.New("fewer samples than clusters")

// KMeans configures k-means clustering with k-means++ seeding.
type KMeans struct {
	// K is the number of clusters.
	K int `koanf:"k" validate:"gte=1"`

	// NInit is the number of seeded runs; the run with the lowest inertia wins.
	NInit int `koanf:"n_init" validate:"gte=1"`

	// MaxIter bounds the Lloyd iterations of one run.
	MaxIter int `koanf:"max_iter" validate:"gte=1"`

	// Tol stops a run once the summed squared center shift falls below it.
	Tol float64 `koanf:"tol" validate:"gte=0"`

	// Seed makes runs reproducible.
	Seed uint64 `koanf:"seed"`
}

// DefaultKMeans returns 10 clusters, 10 runs, 300 iterations.
func DefaultKMeans() KMeans {
	return KMeans{K: 10, NInit: 10, MaxIter: 300, Tol: 1e-4}
}

// Result is the outcome of the best run.
type Result struct {
	Centers *mat.Dense
	Labels  []int
	Inertia float64
	Iter    int
}

// Fit clusters the rows of x and returns the cluster centers, one per row.
func (k KMeans) Fit(x mat.Matrix) (*mat.Dense, error) {
	res, err := k.Run(x)
	if err != nil {
		return nil, err
	}
	return res.Centers, nil
}

// Run clusters the rows of x and returns the best of NInit runs.
func (k KMeans) Run(x mat.Matrix) (Result, error) {
	if k.K <= 0 {
		return Result{}, fmt.Errorf("kmeans: k must be positive, got %d", k.K)
	}
	if k.NInit <= 0 {
		k.NInit = 1
	}
	if k.MaxIter <= 0 {
		k.MaxIter = 300
	}

	n, _ := x.Dims()
	if n < k.K {
		return Result{}, fmt.Errorf("kmeans: %d samples, %d clusters: %w", n, k.K, ErrTooFewSamples)
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}

	rng := rand.New(rand.NewPCG(k.Seed, k.Seed^0x9e3779b97f4a7c15))

	best := Result{Inertia: math.Inf(1)}
	for run := 0; run < k.NInit; run++ {
		centers := seedPlusPlus(rows, k.K, rng)
		res := k.lloyd(rows, centers)
		if res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centers, each next one with probability
// proportional to its squared distance from the closest chosen center.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(rows[rng.IntN(len(rows))]))

	d2 := make([]float64, len(rows))
	for i, r := range rows {
		d2[i] = sqDist(r, centers[0])
	}

	for len(centers) < k {
		total := floats.Sum(d2)
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, w := range d2 {
				target -= w
				if target <= 0 {
					next = i
					break
				}
			}
		} else {
			// Every remaining row coincides with a center.
			next = rng.IntN(len(rows))
		}

		c := clone(rows[next])
		centers = append(centers, c)
		for i, r := range rows {
			d2[i] = math.Min(d2[i], sqDist(r, c))
		}
	}
	return centers
}

func (k KMeans) lloyd(rows [][]float64, centers [][]float64) Result {
	dim := len(rows[0])
	labels := make([]int, len(rows))
	counts := make([]int, len(centers))
	sums := make([][]float64, len(centers))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	iter := 0
	for iter < k.MaxIter {
		iter++
		assign(rows, centers, labels)

		for c := range sums {
			counts[c] = 0
			for j := range sums[c] {
				sums[c][j] = 0
			}
		}
		for i, r := range rows {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], r)
		}

		var shift float64
		for c := range centers {
			// An empty cluster keeps its previous center.
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(centers[c], sums[c])
			copy(centers[c], sums[c])
		}
		if shift <= k.Tol {
			break
		}
	}

	inertia := assign(rows, centers, labels)

	out := mat.NewDense(len(centers), dim, nil)
	for c, center := range centers {
		out.SetRow(c, center)
	}
	return Result{Centers: out, Labels: labels, Inertia: inertia, Iter: iter}
}

// assign labels every row with its closest center and returns the inertia.
func assign(rows, centers [][]float64, labels []int) float64 {
	var inertia float64
	for i, r := range rows {
		best, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(r, center); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return inertia
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
