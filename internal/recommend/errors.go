// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when two preference matrices handed to a
	// vector metric have a different number of feature columns.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNotFound is returned when a user or item is not part of the data model.
	ErrNotFound = errors.New("identifier not found")

	// ErrUnknownMetric is returned for metric names with no implementation.
	ErrUnknownMetric = errors.New("unknown similarity metric")

	// ErrNotReady is returned by the engine before the first successful refresh.
	ErrNotReady = errors.New("recommendation engine not ready")
)

// DimensionError describes a feature-dimension mismatch between two matrices.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: x has %d features, y has %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// NotFoundError wraps ErrNotFound with the identifier that was looked up.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
