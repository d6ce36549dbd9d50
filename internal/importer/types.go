// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package importer

import "time"

// Record is one sale row as read from a file.
type Record struct {
	User    string `parquet:"user"`
	Brand   string `parquet:"brand"`
	Product string `parquet:"product"`
}

// ImportStats holds statistics about an import operation.
type ImportStats struct {
	// Processed is the number of rows read, including skipped ones.
	Processed int64 `json:"processed"`

	// Imported is the number of rows stored.
	Imported int64 `json:"imported"`

	// Skipped is the number of rows that failed validation.
	Skipped int64 `json:"skipped"`

	// Batches is the number of committed batches.
	Batches int64 `json:"batches"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the duration of the import operation.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the import rate.
func (s *ImportStats) RecordsPerSecond() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return float64(s.Processed) / d
}
