// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package importer bulk-loads sales from files into the sales store.

Supported formats, chosen by file extension:

  - .csv: columns user, brand, product. A first row naming those columns
    is treated as a header and skipped.
  - .parquet: rows with string columns user, brand and product.

Rows are validated against models.Sale; rows that fail are counted as
skipped and logged, not fatal. Valid rows are inserted in batches of
config.ImportConfig.BatchSize, each batch in its own transaction.

	imp := importer.New(&cfg.Import, db)
	stats, err := imp.ImportFile(ctx, "sales.csv")
*/
package importer
