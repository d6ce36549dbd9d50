// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package strategy

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/datamodel"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
)

func salesModel() *datamodel.MatrixModel {
	return datamodel.NewBooleanModel(datamodel.Samples{
		"A": {"x": 1, "y": 1, "z": 1},
		"B": {"x": 1, "y": 1},
		"C": {"x": 1},
		"D": {"w": 1},
	})
}

func TestAllCandidates(t *testing.T) {
	tests := []struct {
		name    string
		model   recommend.DataModel
		anchor  string
		want    []string
		wantErr error
	}{
		{
			name:   "excludes anchor",
			model:  datamodel.NewBooleanModelFromSets(map[string][]string{"A": {"i"}, "B": {"i"}, "C": {"j"}}),
			anchor: "A",
			want:   []string{"B", "C"},
		},
		{
			name:   "empty model",
			model:  datamodel.NewBooleanModel(nil),
			anchor: "A",
			want:   []string{},
		},
		{
			name:    "unknown anchor",
			model:   datamodel.NewBooleanModelFromSets(map[string][]string{"A": {"i"}, "B": {"i"}}),
			anchor:  "Z",
			wantErr: recommend.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AllCandidates{}.Candidates(context.Background(), tt.anchor, tt.model)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Candidates() = %v, %v; want error %v", got, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Candidates() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestCandidates(t *testing.T) {
	euclidean := pairwise.EuclideanSpec(pairwise.DefaultEuclideanOptions())

	tests := []struct {
		name    string
		spec    pairwise.Spec
		size    int
		minimal float64
		want    []string
	}{
		{name: "unbounded", spec: euclidean, want: []string{"B", "C", "D"}},
		{name: "size excludes anchor slot", spec: euclidean, size: 2, want: []string{"B", "C"}},
		{name: "size one", spec: euclidean, size: 1, want: []string{"B"}},
		{name: "threshold", spec: euclidean, minimal: 0.4, want: []string{"B", "C"}},
		{name: "threshold keeps equal", spec: euclidean, minimal: 0.5, want: []string{"B"}},
		{name: "cosine drops orthogonal", spec: pairwise.Spec{Metric: pairwise.Cosine}, minimal: 0.1, want: []string{"B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewNearest(tt.spec, tt.size, tt.minimal, zerolog.Nop())
			got, err := s.Candidates(context.Background(), "A", salesModel())
			if err != nil {
				t.Fatalf("Candidates() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestCandidates_NeverAnchorAndAboveThreshold(t *testing.T) {
	model := salesModel()
	s := NewNearest(pairwise.Spec{Metric: pairwise.LogLikelihood}, 0, 0.2, zerolog.Nop())
	ix := s.Index(model)

	for _, anchor := range model.UserIDs() {
		got, err := s.Candidates(context.Background(), anchor, model)
		if err != nil {
			t.Fatalf("Candidates(%s) error = %v", anchor, err)
		}

		scores := make(map[string]float64)
		neighbors, _ := ix.Lookup(anchor)
		for _, n := range neighbors {
			scores[n.ID] = n.Score
		}

		for _, id := range got {
			if id == anchor {
				t.Errorf("Candidates(%s) contains the anchor", anchor)
			}
			if scores[id] < 0.2 {
				t.Errorf("Candidates(%s) returned %s with score %v below threshold", anchor, id, scores[id])
			}
		}
	}
}

func TestNearestCandidates_IndexReuse(t *testing.T) {
	model := salesModel()
	s := NewNearest(pairwise.Spec{Metric: pairwise.Cosine}, 2, 0, zerolog.Nop())

	first := s.Index(model)
	if s.Index(model) != first {
		t.Error("unchanged configuration built a new index")
	}

	s.Reconfigure(pairwise.Spec{Metric: pairwise.Pearson}, 2, 0)
	if s.Index(model) != first {
		t.Error("metric change on the same model replaced the index instead of reconfiguring it")
	}
	if spec, size := first.Config(); spec.Metric != pairwise.Pearson || size != 3 {
		t.Errorf("index Config() = %v, %d, want pearson, 3", spec, size)
	}

	if s.Index(salesModel()) == first {
		t.Error("new model reused the old index")
	}
}

func TestNearestCandidates_UnknownAnchor(t *testing.T) {
	s := NewNearest(pairwise.Spec{Metric: pairwise.Cosine}, 0, 0, zerolog.Nop())
	_, err := s.Candidates(context.Background(), "nobody", salesModel())
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("Candidates() error = %v, want ErrNotFound", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{name: "all", cfg: Config{Kind: KindAll}, wantName: "all"},
		{name: "nearest default", cfg: Config{}, wantName: "nearest"},
		{name: "nearest llr", cfg: Config{Kind: "Nearest", Metric: "llr"}, wantName: "nearest"},
		{name: "bad metric", cfg: Config{Kind: KindNearest, Metric: "manhattan"}, wantErr: true},
		{name: "bad kind", cfg: Config{Kind: "random"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.wantName)
			}
		})
	}
}
