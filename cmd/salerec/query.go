// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/salerec/internal/recommend"
)

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	var (
		n       int
		explain bool
		because string
	)

	cmd := &cobra.Command{
		Use:   "recommend USER",
		Short: "Print recommendations for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			engine, err := a.refreshedEngine(ctx)
			if err != nil {
				return err
			}

			if because != "" {
				items, err := engine.Because(ctx, args[0], because, n)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"user_id": args[0],
					"item_id": because,
					"because": items,
				})
			}

			resp, err := engine.Recommend(ctx, recommend.Request{UserID: args[0], N: n, Explain: explain})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 0, "Number of items (0 uses recommend.limits.default_n)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Attach the user's items behind each recommendation")
	cmd.Flags().StringVar(&because, "because", "", "Explain one item instead of recommending")
	return cmd
}

func newNeighborsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors ID",
		Short: "Print the neighborhood of a user (user mode) or an item (item mode)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			engine, err := a.refreshedEngine(ctx)
			if err != nil {
				return err
			}

			neighbors, err := engine.Neighbors(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), definedNeighbors(neighbors))
		},
	}
}

// definedNeighbors drops neighbors without a usable score, which JSON
// cannot represent.
func definedNeighbors(in []recommend.Neighbor) []recommend.Neighbor {
	out := make([]recommend.Neighbor, 0, len(in))
	for _, nb := range in {
		if nb.Defined() {
			out = append(out, nb)
		}
	}
	return out
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
