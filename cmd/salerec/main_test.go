// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/cluster"
	"github.com/tomtom215/salerec/internal/recommend/datamodel"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"serve", "import", "recommend", "neighbors", "segments", "publish"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"recommend"}, "accepts 1 arg"},
		{[]string{"neighbors", "a", "b"}, "accepts 1 arg"},
		{[]string{"publish", "alice", "acme"}, "accepts 3 arg"},
		{[]string{"import"}, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			root := newRootCommand()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefinedNeighbors(t *testing.T) {
	in := []recommend.Neighbor{{ID: "a", Score: 0.5}, {ID: "b", Score: math.NaN()}, {ID: "c", Score: -1}}
	got := definedNeighbors(in)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("definedNeighbors() = %v, want [a c]", got)
	}
}

func TestTopItems(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	tests := []struct {
		name   string
		center []float64
		n      int
		want   []string
	}{
		{"ordered by weight", []float64{0.1, 0.9, 0.5, 0}, 2, []string{"b", "c"}},
		{"ties by id", []float64{0.5, 0.5, 0.5, 0.5}, 3, []string{"a", "b", "c"}},
		{"zero weights dropped", []float64{0, 0, 1, 0}, 5, []string{"c"}},
		{"unbounded", []float64{1, 2, 3, 4}, 0, []string{"d", "c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topItems(tt.center, items, tt.n)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("topItems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentUsers(t *testing.T) {
	model := datamodel.NewBooleanModelFromSets(map[string][]string{
		"u1": {"acme###a", "acme###b"},
		"u2": {"acme###a", "acme###b"},
		"u3": {"zeta###x", "zeta###y"},
		"u4": {"zeta###x", "zeta###y"},
	})
	km := cluster.KMeans{K: 2, NInit: 5, MaxIter: 100, Seed: 7}

	res, err := segmentUsers(model, km, 2, true)
	if err != nil {
		t.Fatalf("segmentUsers() error = %v", err)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(res.Segments))
	}
	for _, s := range res.Segments {
		if s.Size != 2 {
			t.Errorf("segment %d size = %d, want 2", s.Index, s.Size)
		}
		if len(s.TopItems) != 2 {
			t.Fatalf("segment %d top items = %v, want 2", s.Index, s.TopItems)
		}
		b0, _, _ := models.SplitFeature(s.TopItems[0])
		b1, _, _ := models.SplitFeature(s.TopItems[1])
		if b0 != b1 {
			t.Errorf("segment %d top items = %v, want a single brand", s.Index, s.TopItems)
		}
	}

	row, err := model.PreferencesFromUser("u3")
	if err != nil {
		t.Fatal(err)
	}
	idx, err := cluster.NewClassifier(res.centers).ClassIndex(row)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, u := range res.Segments[idx].Users {
		if u == "u3" {
			found = true
		}
	}
	if !found {
		t.Errorf("u3 classified into segment %d with users %v", idx, res.Segments[idx].Users)
	}

	if _, err := segmentUsers(model, cluster.KMeans{K: 5, NInit: 1}, 1, false); err == nil {
		t.Error("segmentUsers() with k > users: expected error")
	}
}
