// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/models"
)

// ErrInvalidSale is returned for a sale missing its user, brand or product.
var ErrInvalidSale = errors.New("invalid sale")

const insertSaleQuery = `INSERT INTO sales (user_id, brand, product, created_at, modified_at)
	VALUES (?, ?, ?, ?, ?) RETURNING id`

func checkSale(s *models.Sale) error {
	if s == nil || s.User == "" || s.Brand == "" || s.Product == "" {
		return ErrInvalidSale
	}
	return nil
}

func stamp(s *models.Sale, now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.ModifiedAt = now
}

// InsertSale stores one sale and sets its ID and timestamps.
func (db *DB) InsertSale(ctx context.Context, sale *models.Sale) (err error) {
	if err := checkSale(sale); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stamp(sale, start.UTC())
	row := db.conn.QueryRowContext(ctx, insertSaleQuery,
		sale.User, sale.Brand, sale.Product, sale.CreatedAt, sale.ModifiedAt)
	if err := row.Scan(&sale.ID); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// InsertSales stores sales in a single transaction. Either every sale is
// stored or none is.
func (db *DB) InsertSales(ctx context.Context, sales []*models.Sale) (inserted int, err error) {
	if len(sales) == 0 {
		return 0, nil
	}
	for i, s := range sales {
		if err := checkSale(s); err != nil {
			return 0, fmt.Errorf("sale %d: %w", i, err)
		}
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_batch", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := start.UTC()
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSaleQuery)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer closeQuietly(stmt)

		for i, s := range sales {
			stamp(s, now)
			if err := stmt.QueryRowContext(ctx, s.User, s.Brand, s.Product, s.CreatedAt, s.ModifiedAt).Scan(&s.ID); err != nil {
				return fmt.Errorf("insert sale %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(sales), nil
}

// ListSales returns sales matching filter ordered by id. A zero Limit
// returns every match.
func (db *DB) ListSales(ctx context.Context, filter models.SaleFilter) (sales []*models.Sale, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.User != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.User)
	}
	if filter.Brand != "" {
		where = append(where, "brand = ?")
		args = append(args, filter.Brand)
	}

	var b strings.Builder
	b.WriteString("SELECT id, user_id, brand, product, created_at, modified_at FROM sales")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &models.Sale{}
		if err := rows.Scan(&s.ID, &s.User, &s.Brand, &s.Product, &s.CreatedAt, &s.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

// CountSales returns the number of stored sales.
func (db *DB) CountSales(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// SalesStats summarizes the sales table.
type SalesStats struct {
	Sales int64 `json:"sales"`
	Users int64 `json:"users"`
	Items int64 `json:"items"`
}

// Stats returns row, distinct user and distinct item counts.
func (db *DB) Stats(ctx context.Context) (st SalesStats, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("stats", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	const q = `SELECT COUNT(*), COUNT(DISTINCT user_id), COUNT(DISTINCT brand || '###' || product) FROM sales`
	if err := db.conn.QueryRowContext(ctx, q).Scan(&st.Sales, &st.Users, &st.Items); err != nil {
		return SalesStats{}, fmt.Errorf("sales stats: %w", err)
	}
	return st, nil
}
