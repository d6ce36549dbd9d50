// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/salerec/internal/logging"
)

// WithTx runs fn in a transaction. The transaction commits when fn returns
// nil and rolls back when fn returns an error or panics; a panic is
// re-raised after the rollback.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false

	defer func() {
		if p := recover(); p != nil {
			rollback(tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
		if err != nil && !committed {
			rollback(tx, err)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	committed = true
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *sql.Tx, cause error) {
	if err := tx.Rollback(); err != nil {
		logging.Error().Err(err).AnErr("original_error", cause).Msg("Transaction rollback failed")
	}
}
