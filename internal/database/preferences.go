// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/recommend"
)

var (
	_ recommend.DataProvider = (*DB)(nil)
	_ recommend.DataProvider = CountProvider{}
)

// Preferences returns, for every user, each purchased item at 1.0. Items
// are keyed by models.FeatureKey(brand, product).
func (db *DB) Preferences(ctx context.Context) (recommend.Preferences, error) {
	return db.loadPreferences(ctx, false)
}

// PurchaseCounts returns, for every user, the number of times each item
// was bought.
func (db *DB) PurchaseCounts(ctx context.Context) (recommend.Preferences, error) {
	return db.loadPreferences(ctx, true)
}

// CountProvider serves PurchaseCounts as preferences, for explicit models.
type CountProvider struct {
	DB *DB
}

// Preferences implements recommend.DataProvider.
func (p CountProvider) Preferences(ctx context.Context) (recommend.Preferences, error) {
	return p.DB.PurchaseCounts(ctx)
}

func (db *DB) loadPreferences(ctx context.Context, counts bool) (prefs recommend.Preferences, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("preferences", "sales", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	const q = `SELECT user_id, brand, product, COUNT(*) FROM sales GROUP BY user_id, brand, product`
	rows, err := db.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs = make(recommend.Preferences)
	for rows.Next() {
		var (
			user, brand, product string
			n                    int64
		)
		if err := rows.Scan(&user, &brand, &product, &n); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		items, ok := prefs[user]
		if !ok {
			items = make(map[string]float64)
			prefs[user] = items
		}
		v := 1.0
		if counts {
			v = float64(n)
		}
		items[models.FeatureKey(brand, product)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}
	return prefs, nil
}
