// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS sales_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS sales (
		id          BIGINT PRIMARY KEY DEFAULT nextval('sales_id_seq'),
		user_id     VARCHAR NOT NULL,
		brand       VARCHAR NOT NULL,
		product     VARCHAR NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT current_timestamp,
		modified_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user ON sales(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_brand ON sales(brand)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product)`,
}

func (db *DB) initialize(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
