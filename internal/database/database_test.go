// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/salerec/internal/config"
	"github.com/tomtom215/salerec/internal/models"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections from
// many tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := Open(context.Background(), &config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "512MB",
		QueryTimeout: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sale(user, brand, product string) *models.Sale {
	return &models.Sale{User: user, Brand: brand, Product: product}
}

func TestOpen_File(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "sales.duckdb")
	ctx := context.Background()

	db, err := Open(ctx, &config.DatabaseConfig{Path: path, Threads: 2})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.InsertSale(ctx, sale("u1", "acme", "anvil")); err != nil {
		t.Fatalf("InsertSale() error = %v", err)
	}
	if err := db.Checkpoint(ctx); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// reopening keeps rows and does not fail on the existing schema
	db, err = Open(ctx, &config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	n, err := db.CountSales(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountSales() = %d, %v, want 1", n, err)
	}
}

func TestInsertSale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := sale("u1", "acme", "anvil")
	second := sale("u1", "acme", "rocket")
	for _, s := range []*models.Sale{first, second} {
		if err := db.InsertSale(ctx, s); err != nil {
			t.Fatalf("InsertSale() error = %v", err)
		}
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Errorf("IDs = %d, %d, want increasing non-zero", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() || first.ModifiedAt.IsZero() {
		t.Error("timestamps not set")
	}

	if err := db.InsertSale(ctx, sale("u1", "", "x")); !errors.Is(err, ErrInvalidSale) {
		t.Errorf("InsertSale(no brand) error = %v, want ErrInvalidSale", err)
	}
}

func TestInsertSales_Atomic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.InsertSales(ctx, []*models.Sale{
		sale("u1", "acme", "anvil"),
		sale("u2", "acme", "anvil"),
		sale("u2", "globex", "widget"),
	})
	if err != nil || n != 3 {
		t.Fatalf("InsertSales() = %d, %v, want 3", n, err)
	}

	// a bad row rejects the whole batch
	_, err = db.InsertSales(ctx, []*models.Sale{sale("u3", "acme", "anvil"), sale("", "b", "p")})
	if !errors.Is(err, ErrInvalidSale) {
		t.Errorf("InsertSales(bad) error = %v, want ErrInvalidSale", err)
	}

	count, err := db.CountSales(ctx)
	if err != nil || count != 3 {
		t.Errorf("CountSales() = %d, %v, want 3", count, err)
	}

	if n, err := db.InsertSales(ctx, nil); n != 0 || err != nil {
		t.Errorf("InsertSales(nil) = %d, %v", n, err)
	}
}

func TestWithTx(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insert := func(tx *sql.Tx, user string) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO sales (user_id, brand, product) VALUES (?, 'b', 'p')", user)
		return err
	}

	t.Run("commit", func(t *testing.T) {
		if err := db.WithTx(ctx, func(tx *sql.Tx) error { return insert(tx, "ok") }); err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := insert(tx, "err"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("WithTx() error = %v, want boom", err)
		}
	})

	t.Run("rollback on panic", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = db.WithTx(ctx, func(tx *sql.Tx) error {
			_ = insert(tx, "panic")
			panic("boom")
		})
	})

	sales, err := db.ListSales(ctx, models.SaleFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 1 || sales[0].User != "ok" {
		t.Errorf("ListSales() = %v, want only the committed row", sales)
	}
}

func TestListSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertSales(ctx, []*models.Sale{
		sale("u1", "acme", "anvil"),
		sale("u1", "globex", "widget"),
		sale("u2", "acme", "rocket"),
		sale("u3", "acme", "anvil"),
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter models.SaleFilter
		want   []string
	}{
		{name: "all", filter: models.SaleFilter{}, want: []string{"u1", "u1", "u2", "u3"}},
		{name: "by user", filter: models.SaleFilter{User: "u1"}, want: []string{"u1", "u1"}},
		{name: "by brand", filter: models.SaleFilter{Brand: "acme"}, want: []string{"u1", "u2", "u3"}},
		{name: "user and brand", filter: models.SaleFilter{User: "u1", Brand: "globex"}, want: []string{"u1"}},
		{name: "page", filter: models.SaleFilter{Limit: 2, Offset: 1}, want: []string{"u1", "u2"}},
		{name: "no match", filter: models.SaleFilter{User: "ghost"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListSales(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListSales() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].User != tt.want[i] {
					t.Errorf("sales[%d].User = %q, want %q", i, got[i].User, tt.want[i])
				}
			}
		})
	}
}

func TestPreferences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertSales(ctx, []*models.Sale{
		sale("u1", "acme", "anvil"),
		sale("u1", "acme", "anvil"),
		sale("u1", "globex", "widget"),
		sale("u2", "acme", "anvil"),
	}); err != nil {
		t.Fatal(err)
	}

	prefs, err := db.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if len(prefs) != 2 || len(prefs["u1"]) != 2 || len(prefs["u2"]) != 1 {
		t.Fatalf("Preferences() = %v", prefs)
	}
	if v := prefs["u1"]["acme###anvil"]; v != 1 {
		t.Errorf("u1 acme###anvil = %v, want 1", v)
	}

	counts, err := CountProvider{DB: db}.Preferences(ctx)
	if err != nil {
		t.Fatalf("PurchaseCounts() error = %v", err)
	}
	if v := counts["u1"]["acme###anvil"]; v != 2 {
		t.Errorf("u1 acme###anvil count = %v, want 2", v)
	}
	if v := counts["u1"]["globex###widget"]; v != 1 {
		t.Errorf("u1 globex###widget count = %v, want 1", v)
	}

	st, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st != (SalesStats{Sales: 4, Users: 2, Items: 2}) {
		t.Errorf("Stats() = %+v, want {4 2 2}", st)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
