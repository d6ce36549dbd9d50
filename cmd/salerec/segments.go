// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/recommend/builder"
	"github.com/tomtom215/salerec/internal/recommend/cluster"
	"github.com/tomtom215/salerec/internal/recommend/datamodel"
)

// Segment is one k-means cluster of users.
type Segment struct {
	Index    int      `json:"index"`
	Size     int      `json:"size"`
	TopItems []string `json:"top_items"`
	Users    []string `json:"users,omitempty"`
}

// SegmentReport is the output of the segments command.
type SegmentReport struct {
	K          int       `json:"k"`
	Inertia    float64   `json:"inertia"`
	Iterations int       `json:"iterations"`
	Segments   []Segment `json:"segments"`
	// Assigned is the segment of --user, by cosine distance to the centers.
	Assigned *int `json:"assigned,omitempty"`
}

func newSegmentsCommand(opts *rootOptions) *cobra.Command {
	var (
		k         int
		top       int
		withUsers bool
		user      string
	)

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Cluster users by their purchases with k-means",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.openDatabase(ctx); err != nil {
				return err
			}
			prefs, err := a.dataProvider().Preferences(ctx)
			if err != nil {
				return err
			}

			km := a.cfg.Cluster
			if cmd.Flags().Changed("k") {
				km.K = k
			}

			model := builder.Model(&a.cfg.Recommend, prefs)
			report, err := segmentUsers(model, km, top, withUsers)
			if err != nil {
				return err
			}

			if user != "" {
				row, err := model.PreferencesFromUser(user)
				if err != nil {
					return err
				}
				idx, err := cluster.NewClassifier(report.centers).ClassIndex(row)
				if err != nil {
					return err
				}
				report.Assigned = &idx
			}
			return printJSON(cmd.OutOrStdout(), report.SegmentReport)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 10, "Number of segments (overrides cluster.k)")
	cmd.Flags().IntVar(&top, "top", 5, "Items listed per segment")
	cmd.Flags().BoolVar(&withUsers, "users", false, "List the users of each segment")
	cmd.Flags().StringVar(&user, "user", "", "Also report which segment this user falls in")
	return cmd
}

type segmentResult struct {
	SegmentReport
	centers *mat.Dense
}

func segmentUsers(model *datamodel.MatrixModel, km cluster.KMeans, top int, withUsers bool) (*segmentResult, error) {
	x := model.Dense()
	if x == nil {
		return nil, errors.New("no sales to segment")
	}

	res, err := km.Run(x)
	if err != nil {
		return nil, fmt.Errorf("segment users: %w", err)
	}

	users := model.UserIDs()
	items := model.ItemIDs()

	segments := make([]Segment, km.K)
	for i := range segments {
		segments[i] = Segment{Index: i, TopItems: topItems(mat.Row(nil, i, res.Centers), items, top)}
	}
	for row, label := range res.Labels {
		segments[label].Size++
		if withUsers {
			segments[label].Users = append(segments[label].Users, users[row])
		}
	}

	return &segmentResult{
		SegmentReport: SegmentReport{
			K:          km.K,
			Inertia:    res.Inertia,
			Iterations: res.Iter,
			Segments:   segments,
		},
		centers: res.Centers,
	}, nil
}

// topItems returns the n items with the largest center weight, ties by id.
func topItems(center []float64, items []string, n int) []string {
	idx := make([]int, 0, len(center))
	for i, w := range center {
		if w > 0 {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		if center[idx[a]] != center[idx[b]] {
			return center[idx[a]] > center[idx[b]]
		}
		return items[idx[a]] < items[idx[b]]
	})
	if n > 0 && len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
