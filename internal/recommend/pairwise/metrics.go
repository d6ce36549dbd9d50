// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package pairwise

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/salerec/internal/recommend"
)

// EuclideanOptions controls the output of EuclideanSimilarity.
type EuclideanOptions struct {
	// Squared returns squared distances. Takes precedence over Inverse.
	Squared bool

	// Inverse maps a distance d to the similarity 1/(1+d).
	Inverse bool
}

// DefaultEuclideanOptions returns the similarity form: not squared, inverted.
func DefaultEuclideanOptions() EuclideanOptions {
	return EuclideanOptions{Squared: false, Inverse: true}
}

// EuclideanSimilarity computes the Euclidean distance between every row of x
// and every row of y.
//
// With the default options the distance d is returned as 1/(1+d), so 1 means
// identical rows and values approach 0 as rows drift apart.
func EuclideanSimilarity(x, y mat.Matrix, opts EuclideanOptions) (*mat.Dense, error) {
	return pairwiseRows(x, y, func(a, b []float64) float64 {
		if opts.Squared {
			return squaredDistance(a, b)
		}
		d := floats.Distance(a, b, 2)
		if opts.Inverse {
			return 1.0 / (1.0 + d)
		}
		return d
	})
}

// PearsonCorrelation computes the linear correlation coefficient between
// every row of x and every row of y. Each row is centered on its own mean,
// which makes the result the cosine similarity of the centered rows.
// Rows with zero variance yield NaN.
func PearsonCorrelation(x, y mat.Matrix) (*mat.Dense, error) {
	return pairwiseRows(x, y, func(a, b []float64) float64 {
		return stat.Correlation(a, b, nil)
	})
}

// CosineSimilarity computes the cosine of the angle between every row of x
// and every row of y. Rows are not centered; use PearsonCorrelation for that.
// A zero row yields NaN.
func CosineSimilarity(x, y mat.Matrix) (*mat.Dense, error) {
	xr, yr, err := rowsOf(x, y)
	if err != nil {
		return nil, err
	}

	xn := norms(xr)
	yn := xn
	if !sameMatrix(x, y) {
		yn = norms(yr)
	}

	return fill(xr, yr, sameMatrix(x, y), func(i, j int) float64 {
		return floats.Dot(xr[i], yr[j]) / (xn[i] * yn[j])
	}), nil
}

// LogLikelihoodCoefficient scores the co-occurrence of every item set in x
// with every item set in y, drawn from a universe of nItems items.
//
// For a pair (a, b):
//   - no common item scores 0
//   - a contained in b, or b covering every item, scores 1
//   - otherwise the log-likelihood ratio G2 of the 2x2 contingency table
//     is mapped to 1 - 1/(1+G2)
//
// Duplicate identifiers inside one set count once.
func LogLikelihoodCoefficient(nItems int, x, y [][]string) *mat.Dense {
	if len(x) == 0 || len(y) == 0 {
		return &mat.Dense{}
	}

	dict := make(map[string]uint32)
	xb := bitmaps(x, dict)
	yb := xb
	if !sameSets(x, y) {
		yb = bitmaps(y, dict)
	}

	out := mat.NewDense(len(xb), len(yb), nil)
	for i, a := range xb {
		nx := a.GetCardinality()
		for j, b := range yb {
			overlap := a.AndCardinality(b)
			if overlap == 0 {
				out.Set(i, j, 0)
				continue
			}

			ny := b.GetCardinality()
			if nx-overlap == 0 || int64(nItems)-int64(ny) == 0 {
				out.Set(i, j, 1)
				continue
			}

			g2 := twoLogLambda(
				float64(overlap),
				float64(nx-overlap),
				float64(ny),
				float64(int64(nItems)-int64(ny)),
			)
			out.Set(i, j, 1.0-1.0/(1.0+g2))
		}
	}
	return out
}

// safeLog returns log(d), or 0 for d <= 0.
func safeLog(d float64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Log(d)
}

func logL(p, k, n float64) float64 {
	return k*safeLog(p) + (n-k)*safeLog(1.0-p)
}

func twoLogLambda(k1, k2, n1, n2 float64) float64 {
	p := (k1 + k2) / (n1 + n2)
	return 2.0 * (logL(k1/n1, k1, n1) + logL(k2/n2, k2, n2) - logL(p, k1, n1) - logL(p, k2, n2))
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// pairwiseRows applies fn to every (row of x, row of y) pair.
func pairwiseRows(x, y mat.Matrix, fn func(a, b []float64) float64) (*mat.Dense, error) {
	xr, yr, err := rowsOf(x, y)
	if err != nil {
		return nil, err
	}
	return fill(xr, yr, sameMatrix(x, y), func(i, j int) float64 {
		return fn(xr[i], yr[j])
	}), nil
}

// rowsOf checks dimensions and extracts the rows of x and y.
// Nothing is computed when the feature counts differ.
func rowsOf(x, y mat.Matrix) (xr, yr [][]float64, err error) {
	_, xc := x.Dims()
	_, yc := y.Dims()
	if xc != yc {
		return nil, nil, &recommend.DimensionError{Expected: xc, Actual: yc}
	}

	xr = rows(x)
	if sameMatrix(x, y) {
		return xr, xr, nil
	}
	return xr, rows(y), nil
}

func rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

func norms(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = floats.Norm(r, 2)
	}
	return out
}

// fill evaluates score for every cell. When x and y are the same matrix only
// the upper triangle is computed; every metric here is symmetric in its
// arguments, so the mirrored cell holds the same value.
func fill(xr, yr [][]float64, symmetric bool, score func(i, j int) float64) *mat.Dense {
	if len(xr) == 0 || len(yr) == 0 {
		return &mat.Dense{}
	}

	out := mat.NewDense(len(xr), len(yr), nil)
	for i := range xr {
		start := 0
		if symmetric {
			start = i
		}
		for j := start; j < len(yr); j++ {
			v := score(i, j)
			out.Set(i, j, v)
			if symmetric {
				out.Set(j, i, v)
			}
		}
	}
	return out
}

func sameMatrix(x, y mat.Matrix) bool {
	a, ok := x.(*mat.Dense)
	if !ok {
		return false
	}
	b, ok := y.(*mat.Dense)
	return ok && a == b
}

func sameSets(x, y [][]string) bool {
	return len(x) == len(y) && len(x) > 0 && &x[0] == &y[0]
}

func bitmaps(sets [][]string, dict map[string]uint32) []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, len(sets))
	for i, set := range sets {
		bm := roaring.New()
		for _, id := range set {
			code, ok := dict[id]
			if !ok {
				code = uint32(len(dict))
				dict[id] = code
			}
			bm.Add(code)
		}
		out[i] = bm
	}
	return out
}
