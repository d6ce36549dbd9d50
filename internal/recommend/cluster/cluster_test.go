// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package cluster

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend"
)

func blobs() *mat.Dense {
	return mat.NewDense(6, 2, []float64{
		0, 0,
		0.1, 0.2,
		0.2, 0.1,
		10, 10,
		10.1, 9.9,
		9.8, 10.2,
	})
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	km := KMeans{K: 2, NInit: 5, MaxIter: 100, Tol: 1e-6, Seed: 42}
	res, err := km.Run(blobs())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Labels[0] != res.Labels[1] || res.Labels[1] != res.Labels[2] {
		t.Errorf("first blob split: labels = %v", res.Labels)
	}
	if res.Labels[3] != res.Labels[4] || res.Labels[4] != res.Labels[5] {
		t.Errorf("second blob split: labels = %v", res.Labels)
	}
	if res.Labels[0] == res.Labels[3] {
		t.Errorf("blobs merged: labels = %v", res.Labels)
	}

	low := res.Centers.RawRowView(res.Labels[0])
	if math.Abs(low[0]-0.1) > 1e-9 || math.Abs(low[1]-0.1) > 1e-9 {
		t.Errorf("low center = %v, want [0.1 0.1]", low)
	}
}

func TestKMeans_Reproducible(t *testing.T) {
	km := KMeans{K: 3, NInit: 3, MaxIter: 50, Seed: 7}
	a, err := km.Fit(blobs())
	if err != nil {
		t.Fatal(err)
	}
	b, err := km.Fit(blobs())
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a, b) {
		t.Error("Fit() with the same seed returned different centers")
	}
}

func TestKMeans_Errors(t *testing.T) {
	tests := []struct {
		name string
		km   KMeans
		want error
	}{
		{name: "too few samples", km: KMeans{K: 7}, want: ErrTooFewSamples},
		{name: "zero k", km: KMeans{K: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.km.Fit(blobs())
			if err == nil {
				t.Fatal("Fit() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Fit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassifier(t *testing.T) {
	centers := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	c := NewClassifier(centers)

	tests := []struct {
		name string
		v    []float64
		want []float64
	}{
		{"x axis", []float64{5, 0.1}, []float64{1, 0}},
		{"y axis", []float64{0.2, 3}, []float64{0, 1}},
		{"diagonal", []float64{2, 2.1}, []float64{1, 1}},
		{"zero row falls back to first class", []float64{0, 0}, []float64{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.v)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}

	if _, err := c.Classify([]float64{1, 2, 3}); !errors.Is(err, recommend.ErrDimensionMismatch) {
		t.Errorf("Classify() error = %v, want ErrDimensionMismatch", err)
	}
}
