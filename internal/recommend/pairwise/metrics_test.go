// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package pairwise

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
)

const tolerance = 1e-7

func dense(rows ...[]float64) *mat.Dense {
	data := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), len(rows[0]), data)
}

func assertMatrix(t *testing.T, got *mat.Dense, want [][]float64) {
	t.Helper()
	r, c := got.Dims()
	if r != len(want) || c != len(want[0]) {
		t.Fatalf("Dims() = (%d, %d), want (%d, %d)", r, c, len(want), len(want[0]))
	}
	for i := range want {
		for j := range want[i] {
			if math.Abs(got.At(i, j)-want[i][j]) > tolerance {
				t.Errorf("At(%d, %d) = %.8f, want %.8f", i, j, got.At(i, j), want[i][j])
			}
		}
	}
}

var (
	ratingsA = []float64{2.5, 3.5, 3.0, 3.5, 2.5, 3.0}
	ratingsB = []float64{3.0, 3.5, 1.5, 5.0, 3.5, 3.0}
)

func TestEuclideanSimilarity(t *testing.T) {
	tests := []struct {
		name string
		x, y *mat.Dense
		opts EuclideanOptions
		want [][]float64
	}{
		{
			name: "rows against themselves",
			x:    dense(ratingsA, ratingsB),
			y:    dense(ratingsA, ratingsB),
			opts: DefaultEuclideanOptions(),
			want: [][]float64{{1, 0.29429806}, {0.29429806, 1}},
		},
		{
			name: "distance to origin",
			x:    dense([]float64{1, 0}, []float64{1, 1}),
			y:    dense([]float64{0, 0}),
			opts: DefaultEuclideanOptions(),
			want: [][]float64{{0.5}, {0.41421356}},
		},
		{
			name: "plain distance",
			x:    dense([]float64{0, 0}),
			y:    dense([]float64{3, 4}),
			opts: EuclideanOptions{},
			want: [][]float64{{5}},
		},
		{
			name: "squared distance ignores inverse",
			x:    dense([]float64{0, 0}),
			y:    dense([]float64{3, 4}),
			opts: EuclideanOptions{Squared: true, Inverse: true},
			want: [][]float64{{25}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EuclideanSimilarity(tt.x, tt.y, tt.opts)
			if err != nil {
				t.Fatalf("EuclideanSimilarity() error = %v", err)
			}
			assertMatrix(t, got, tt.want)
		})
	}
}

func TestEuclideanSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float64{
		{0, 0, 0},
		{1, 2, 3},
		{-4.5, 1e6, 0.001},
	}
	for _, v := range vectors {
		x := dense(v)
		got, err := EuclideanSimilarity(x, x, DefaultEuclideanOptions())
		if err != nil {
			t.Fatalf("EuclideanSimilarity() error = %v", err)
		}
		if got.At(0, 0) != 1.0 {
			t.Errorf("EuclideanSimilarity(%v, %v) = %v, want 1", v, v, got.At(0, 0))
		}
	}
}

func TestEuclideanSimilarity_AliasMatchesCopy(t *testing.T) {
	x := dense(ratingsA, ratingsB, []float64{1, 1, 1, 1, 1, 1})
	y := mat.DenseCopyOf(x)

	aliased, err := EuclideanSimilarity(x, x, DefaultEuclideanOptions())
	if err != nil {
		t.Fatal(err)
	}
	copied, err := EuclideanSimilarity(x, y, DefaultEuclideanOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(aliased, copied) {
		t.Errorf("aliased result differs from copied result:\n%v\n%v", mat.Formatted(aliased), mat.Formatted(copied))
	}
}

func TestPearsonCorrelation(t *testing.T) {
	x := dense(ratingsA, ratingsA)

	got, err := PearsonCorrelation(x, x)
	if err != nil {
		t.Fatalf("PearsonCorrelation() error = %v", err)
	}
	assertMatrix(t, got, [][]float64{{1, 1}, {1, 1}})

	got, err = PearsonCorrelation(x, dense(ratingsB))
	if err != nil {
		t.Fatalf("PearsonCorrelation() error = %v", err)
	}
	assertMatrix(t, got, [][]float64{{0.39605902}, {0.39605902}})
}

func TestPearsonCorrelation_ZeroVarianceIsNaN(t *testing.T) {
	got, err := PearsonCorrelation(dense([]float64{2, 2, 2}), dense([]float64{1, 2, 3}))
	if err != nil {
		t.Fatalf("PearsonCorrelation() error = %v", err)
	}
	if !math.IsNaN(got.At(0, 0)) {
		t.Errorf("PearsonCorrelation(constant, v) = %v, want NaN", got.At(0, 0))
	}
}

func TestCosineSimilarity(t *testing.T) {
	x := dense(ratingsA, ratingsA)

	got, err := CosineSimilarity(x, x)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	assertMatrix(t, got, [][]float64{{1, 1}, {1, 1}})

	got, err = CosineSimilarity(x, dense(ratingsB))
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	assertMatrix(t, got, [][]float64{{0.9606463}, {0.9606463}})
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	x := dense(ratingsA, []float64{0, 1, 0, 1, 0, 1})
	y := dense(ratingsB, []float64{5, 4, 3, 2, 1, 0}, []float64{1, 0, 0, 0, 0, 0})

	xy, err := CosineSimilarity(x, y)
	if err != nil {
		t.Fatal(err)
	}
	yx, err := CosineSimilarity(y, x)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(xy, yx.T()) {
		t.Errorf("CosineSimilarity(x, y) != CosineSimilarity(y, x)^T")
	}
}

func TestCosineSimilarity_ZeroRowIsNaN(t *testing.T) {
	got, err := CosineSimilarity(dense([]float64{0, 0}), dense([]float64{1, 2}))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got.At(0, 0)) {
		t.Errorf("CosineSimilarity(zero, v) = %v, want NaN", got.At(0, 0))
	}
}

func TestVectorMetrics_DimensionMismatch(t *testing.T) {
	x := dense([]float64{1, 2, 3})
	y := dense([]float64{1, 2})

	metrics := map[string]VectorFunc{
		"euclidean": func(x, y mat.Matrix) (*mat.Dense, error) {
			return EuclideanSimilarity(x, y, DefaultEuclideanOptions())
		},
		"pearson": PearsonCorrelation,
		"cosine":  CosineSimilarity,
	}

	for name, fn := range metrics {
		t.Run(name, func(t *testing.T) {
			got, err := fn(x, y)
			if !errors.Is(err, recommend.ErrDimensionMismatch) {
				t.Fatalf("error = %v, want ErrDimensionMismatch", err)
			}
			if got != nil {
				t.Errorf("result = %v, want nil on mismatch", got)
			}
			var dimErr *recommend.DimensionError
			if !errors.As(err, &dimErr) || dimErr.Expected != 3 || dimErr.Actual != 2 {
				t.Errorf("DimensionError = %+v, want {3 2}", dimErr)
			}
		})
	}
}

func TestLogLikelihoodCoefficient(t *testing.T) {
	x := [][]string{{"a", "b", "c", "d"}, {"e", "f", "g", "h"}}

	t.Run("self comparison", func(t *testing.T) {
		got := LogLikelihoodCoefficient(7, x, x)
		assertMatrix(t, got, [][]float64{{1, 0}, {0, 1}})
	})

	t.Run("partial overlap", func(t *testing.T) {
		got := LogLikelihoodCoefficient(8, x, [][]string{{"a", "b", "c", "k"}})
		assertMatrix(t, got, [][]float64{{0.67668852}, {0}})
		if v := got.At(0, 0); v <= 0 || v >= 1 {
			t.Errorf("partial overlap score = %v, want in (0, 1)", v)
		}
	})

	t.Run("reproducible", func(t *testing.T) {
		y := [][]string{{"a", "b", "c", "k"}}
		first := LogLikelihoodCoefficient(8, x, y)
		second := LogLikelihoodCoefficient(8, x, y)
		if !mat.Equal(first, second) {
			t.Error("repeated calls returned different results")
		}
	})

	t.Run("full overlap", func(t *testing.T) {
		got := LogLikelihoodCoefficient(7, [][]string{{"a", "b", "c", "d"}}, [][]string{{"a", "b", "c", "d"}})
		if got.At(0, 0) != 1.0 {
			t.Errorf("score = %v, want 1", got.At(0, 0))
		}
	})

	t.Run("other set covers universe", func(t *testing.T) {
		got := LogLikelihoodCoefficient(3, [][]string{{"a", "z"}}, [][]string{{"a", "b", "c"}})
		if got.At(0, 0) != 1.0 {
			t.Errorf("score = %v, want 1", got.At(0, 0))
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		got := LogLikelihoodCoefficient(10, [][]string{{"a"}}, [][]string{{"b", "c"}})
		if got.At(0, 0) != 0 {
			t.Errorf("score = %v, want 0", got.At(0, 0))
		}
	})

	t.Run("duplicates count once", func(t *testing.T) {
		withDup := LogLikelihoodCoefficient(8, [][]string{{"a", "a", "b", "c", "d"}}, [][]string{{"a", "b", "c", "k"}})
		without := LogLikelihoodCoefficient(8, [][]string{{"a", "b", "c", "d"}}, [][]string{{"a", "b", "c", "k"}})
		if withDup.At(0, 0) != without.At(0, 0) {
			t.Errorf("duplicate ids changed score: %v vs %v", withDup.At(0, 0), without.At(0, 0))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := LogLikelihoodCoefficient(8, nil, x)
		if r, c := got.Dims(); r != 0 || c != 0 {
			t.Errorf("Dims() = (%d, %d), want (0, 0)", r, c)
		}
	})
}

func TestSafeLog(t *testing.T) {
	for _, d := range []float64{0, -1, math.Inf(-1)} {
		if got := safeLog(d); got != 0 {
			t.Errorf("safeLog(%v) = %v, want 0", d, got)
		}
	}
	if got := safeLog(math.E); math.Abs(got-1) > tolerance {
		t.Errorf("safeLog(e) = %v, want 1", got)
	}
}
