// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/salerec/internal/cache"
	"github.com/tomtom215/salerec/internal/config"
	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/models"
)

const metricSource = "nats"

// SaleStore persists one sale. *database.DB satisfies it.
type SaleStore interface {
	InsertSale(ctx context.Context, sale *models.Sale) error
}

// Notifier is told that stored data changed. *recommend.Engine satisfies it.
type Notifier interface {
	MarkDirty()
}

// Stats are the handler's running counters.
type Stats struct {
	Received   int64           `json:"received"`
	Stored     int64           `json:"stored"`
	Duplicates int64           `json:"duplicates"`
	Invalid    int64           `json:"invalid"`
	Failed     int64           `json:"failed"`
	Breaker    string          `json:"breaker_state"`
	Dedup      cache.SeenStats `json:"dedup"`
}

// Handler turns sale event messages into stored sales.
type Handler struct {
	store    SaleStore
	notifier Notifier
	breaker  *gobreaker.CircuitBreaker[struct{}]
	seen     *cache.SeenSet
	logger   zerolog.Logger

	received   atomic.Int64
	stored     atomic.Int64
	duplicates atomic.Int64
	invalid    atomic.Int64
	failed     atomic.Int64
}

// NewHandler builds a handler. notifier may be nil.
func NewHandler(store SaleStore, notifier Notifier, cfg config.NATSConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		breaker:  newBreaker(cfg.Breaker),
		seen:     cache.NewSeenSet(cfg.DedupEntries, cfg.DedupWindow),
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Handle processes one message. A nil return means the message can be
// acked, including for duplicates. Permanent errors mean ack and drop,
// anything else means nack.
func (h *Handler) Handle(msg *message.Message) error {
	start := time.Now()
	h.received.Add(1)
	defer func() { metrics.RecordNATSConsume(time.Since(start)) }()

	if h.store == nil {
		return ErrNoStore
	}

	evt, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		h.invalid.Add(1)
		metrics.RecordSaleRejected(metricSource, "invalid")
		return err
	}

	if evt.EventID != "" && h.seen.CheckAndAdd(evt.EventID) {
		h.duplicates.Add(1)
		metrics.RecordSaleRejected(metricSource, "duplicate")
		h.logger.Debug().
			Str("event_id", evt.EventID).
			Str("message_uuid", msg.UUID).
			Msg("Duplicate sale event dropped")
		return nil
	}

	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sale := evt.ToSale()
	_, err = h.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, h.store.InsertSale(ctx, sale)
	})
	metrics.RecordCircuitBreakerRequest(breakerName, breakerResult(err))
	if err != nil {
		h.failed.Add(1)
		// Let the redelivery through the dedup check.
		if evt.EventID != "" {
			h.seen.Forget(evt.EventID)
		}
		return err
	}

	h.stored.Add(1)
	metrics.RecordSalesIngested(metricSource, 1)
	if h.notifier != nil {
		h.notifier.MarkDirty()
	}

	h.logger.Debug().
		Int64("sale_id", sale.ID).
		Str("user", sale.User).
		Str("feature", sale.Feature()).
		Msg("Sale stored")
	return nil
}

// BreakerState returns "closed", "half-open" or "open".
func (h *Handler) BreakerState() string {
	return h.breaker.State().String()
}

// Stats returns a snapshot of the counters.
func (h *Handler) Stats() Stats {
	return Stats{
		Received:   h.received.Load(),
		Stored:     h.stored.Load(),
		Duplicates: h.duplicates.Load(),
		Invalid:    h.invalid.Load(),
		Failed:     h.failed.Load(),
		Breaker:    h.BreakerState(),
		Dedup:      h.seen.Stats(),
	}
}

// SweepDedup drops expired event IDs.
func (h *Handler) SweepDedup() int {
	return h.seen.Sweep()
}
