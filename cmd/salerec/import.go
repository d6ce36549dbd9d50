// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/salerec/internal/importer"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Bulk load sales from CSV or Parquet files",
		Long: `Bulk load sales from CSV or Parquet files.

CSV rows are user,brand,product; a leading header row is skipped. Parquet
files carry user, brand and product columns. Rows that fail validation are
skipped and counted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("batch-size") {
				a.cfg.Import.BatchSize = batchSize
			}

			ctx := cmd.Context()
			if err := a.openDatabase(ctx); err != nil {
				return err
			}
			defer a.close()

			imp := importer.New(&a.cfg.Import, a.db)
			for _, path := range args {
				stats, err := imp.ImportFile(ctx, path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d imported, %d skipped, %d batches in %s\n",
					path, stats.Imported, stats.Skipped, stats.Batches, stats.Duration().Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Rows per transaction (overrides import.batch_size)")
	return cmd
}
