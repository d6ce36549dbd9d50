// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/config"
	"github.com/tomtom215/salerec/internal/logging"
	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/validation"
)

// Sink stores a batch of sales atomically.
type Sink interface {
	InsertSales(ctx context.Context, sales []*models.Sale) (int, error)
}

// Importer loads sale files into a Sink.
type Importer struct {
	batchSize int
	sink      Sink
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
}

// New creates an importer writing to sink.
func New(cfg *config.ImportConfig, sink Sink) *Importer {
	size := cfg.BatchSize
	if size <= 0 {
		size = 1000
	}
	return &Importer{
		batchSize: size,
		sink:      sink,
		logger:    logging.WithComponent("importer"),
	}
}

// ImportFile imports the file at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			i.logger.Warn().Err(cerr).Str("path", path).Msg("Error closing import file")
		}
	}()

	i.logger.Info().Str("path", path).Msg("Starting import")
	return i.Import(ctx, r)
}

// Import reads r to the end. Batches committed before an error stay committed.
func (i *Importer) Import(ctx context.Context, r RecordReader) (*ImportStats, error) {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, fmt.Errorf("import already in progress")
	}
	i.running = true
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
	}()

	stats := &ImportStats{StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	buf := make([]Record, i.batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, rerr := r.Read(buf)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return stats, fmt.Errorf("read records: %w", rerr)
		}
		if n > 0 {
			if err := i.processBatch(ctx, buf[:n], stats); err != nil {
				return stats, err
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
	}

	stats.EndTime = time.Now()
	i.logger.Info().
		Int64("processed", stats.Processed).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Dur("duration", stats.Duration()).
		Msg("Import completed")
	return stats, nil
}

func (i *Importer) processBatch(ctx context.Context, records []Record, stats *ImportStats) error {
	sales := make([]*models.Sale, 0, len(records))
	for idx := range records {
		stats.Processed++
		s := &models.Sale{User: records[idx].User, Brand: records[idx].Brand, Product: records[idx].Product}
		if verr := validation.ValidateStruct(s); verr != nil {
			stats.Skipped++
			metrics.RecordSaleRejected("import", "validation")
			i.logger.Debug().Int64("row", stats.Processed).Str("reason", verr.Error()).Msg("Skipping invalid row")
			continue
		}
		sales = append(sales, s)
	}
	if len(sales) == 0 {
		return nil
	}

	n, err := i.sink.InsertSales(ctx, sales)
	if err != nil {
		return fmt.Errorf("insert batch %d: %w", stats.Batches+1, err)
	}
	stats.Imported += int64(n)
	stats.Batches++
	metrics.RecordSalesIngested("import", n)
	return nil
}
