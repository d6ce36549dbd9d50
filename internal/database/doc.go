// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package database stores sales in DuckDB and serves them to the recommender.

The schema is a single sales table, one row per purchase:

	sales(id, user_id, brand, product, created_at, modified_at)

with indexes on user_id, brand and product. A user buying the same product
twice produces two rows.

Reads for model building go through Preferences (every purchased item at
1.0, for boolean models) or PurchaseCounts (number of purchases, usable as
an explicit rating). Both implement recommend.DataProvider via DB and
CountProvider.

Writes are batched in one transaction by InsertSales; WithTx exposes the same
commit-or-rollback session to callers that need several statements.

Every query records its duration and outcome through the metrics package.
*/
package database
