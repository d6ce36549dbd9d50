// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/metrics"
)

// Note: sub-packages (datamodel, knn, ...) import this package, so the
// engine reaches them only through the Factory set by the caller.

// ErrRefreshInProgress is returned when Refresh is called while another
// refresh is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// ErrInsufficientData is returned when there are too few users to build a model.
var ErrInsufficientData = errors.New("insufficient data")

// Preferences maps user id -> item id -> preference value.
type Preferences map[string]map[string]float64

// DataProvider supplies the preferences a model is built from.
// This is typically implemented by the database layer.
type DataProvider interface {
	Preferences(ctx context.Context) (Preferences, error)
}

// Factory builds a data model and a recommender over it from preferences.
type Factory func(ctx context.Context, cfg *Config, prefs Preferences) (DataModel, Recommender, error)

// Warmer is implemented by recommenders that can precompute neighborhoods.
type Warmer interface {
	Warm(ctx context.Context, workers int) error
}

// snapshot is an immutable model generation.
type snapshot struct {
	model       DataModel
	recommender Recommender
	version     int
	refreshedAt time.Time
}

// Engine holds the current model snapshot and serves recommendations from it.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	dataProvider DataProvider
	factory      Factory

	// mu guards current; refreshMu serializes refreshes.
	mu        sync.RWMutex
	current   *snapshot
	refreshMu sync.Mutex

	statusMu    sync.RWMutex
	lastError   string
	lastRefresh time.Duration

	dirty atomic.Bool
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// SetDataProvider sets the source of preferences.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()
	e.dataProvider = dp
}

// SetFactory sets the model and recommender builder.
func (e *Engine) SetFactory(f Factory) {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()
	e.factory = f
}

// MarkDirty records that new sales arrived since the last refresh.
func (e *Engine) MarkDirty() {
	e.dirty.Store(true)
}

// Dirty reports whether sales arrived since the last refresh started.
func (e *Engine) Dirty() bool {
	return e.dirty.Load()
}

// Ready reports whether a model has been built.
func (e *Engine) Ready() bool {
	return e.snapshot() != nil
}

func (e *Engine) snapshot() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Refresh loads preferences, builds a new model and recommender and swaps
// them in. The previous snapshot keeps serving until the swap.
func (e *Engine) Refresh(ctx context.Context) error {
	if !e.refreshMu.TryLock() {
		return ErrRefreshInProgress
	}
	defer e.refreshMu.Unlock()

	if e.dataProvider == nil {
		return fmt.Errorf("data provider not set")
	}
	if e.factory == nil {
		return fmt.Errorf("factory not set")
	}

	start := time.Now()
	// Sales that arrive while loading mark the engine dirty again.
	wasDirty := e.dirty.Swap(false)

	next, err := e.build(ctx)
	duration := time.Since(start)

	e.statusMu.Lock()
	e.lastRefresh = duration
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
	e.statusMu.Unlock()

	if err != nil {
		if wasDirty {
			e.dirty.Store(true)
		}
		metrics.RecordModelRefresh(duration, 0, 0, 0, err)
		e.logger.Error().Err(err).Dur("duration", duration).Msg("model refresh failed")
		return err
	}

	e.mu.Lock()
	if e.current != nil {
		next.version = e.current.version + 1
	} else {
		next.version = 1
	}
	e.current = next
	e.mu.Unlock()

	metrics.RecordModelRefresh(duration, next.version, next.model.UsersCount(), next.model.ItemsCount(), nil)
	e.logger.Info().
		Int("version", next.version).
		Int("users", next.model.UsersCount()).
		Int("items", next.model.ItemsCount()).
		Dur("duration", duration).
		Msg("model refresh complete")

	return nil
}

func (e *Engine) build(ctx context.Context) (*snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Refresh.Timeout)
	defer cancel()

	prefs, err := e.dataProvider.Preferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if len(prefs) < e.config.Refresh.MinUsers {
		return nil, fmt.Errorf("%d users, need %d: %w", len(prefs), e.config.Refresh.MinUsers, ErrInsufficientData)
	}

	model, rec, err := e.factory(ctx, e.config, prefs)
	if err != nil {
		return nil, fmt.Errorf("build recommender: %w", err)
	}

	if w, ok := rec.(Warmer); ok && e.config.Refresh.WarmWorkers > 0 {
		if err := w.Warm(ctx, e.config.Refresh.WarmWorkers); err != nil {
			return nil, err
		}
	}

	return &snapshot{model: model, recommender: rec, refreshedAt: time.Now()}, nil
}

// Recommend generates recommendations for a user.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = e.prepareRequest(req)

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()

	snap := e.snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}

	items, err := snap.recommender.Recommend(ctx, req.UserID, req.N)
	if err == nil && req.Explain {
		err = e.explain(ctx, snap, req, items)
	}
	metrics.RecordRecommendation(e.config.Mode, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("recommend for %q: %w", req.UserID, err)
	}

	resp := &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			UserID:       req.UserID,
			Mode:         e.config.Mode,
			Metric:       e.config.Metric,
			LatencyMS:    time.Since(start).Milliseconds(),
			ModelVersion: snap.version,
			RefreshedAt:  snap.refreshedAt,
			Timestamp:    time.Now(),
		},
	}

	logger.Debug().
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

func (e *Engine) explain(ctx context.Context, snap *snapshot, req Request, items []ScoredItem) error {
	for i := range items {
		because, err := snap.recommender.RecommendedBecause(ctx, req.UserID, items[i].ItemID, req.ExplainN)
		if err != nil {
			return fmt.Errorf("explain %q: %w", items[i].ItemID, err)
		}
		items[i].Because = because
	}
	return nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.N <= 0 {
		req.N = e.config.Limits.DefaultN
	}
	if req.N > e.config.Limits.MaxN {
		req.N = e.config.Limits.MaxN
	}
	if req.ExplainN <= 0 {
		req.ExplainN = e.config.Limits.DefaultExplainN
	}
	return req
}

// Because returns up to n ids explaining why itemID would be recommended
// to userID. n <= 0 uses the configured default.
func (e *Engine) Because(ctx context.Context, userID, itemID string, n int) ([]string, error) {
	snap := e.snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	if n <= 0 {
		n = e.config.Limits.DefaultExplainN
	}
	return snap.recommender.RecommendedBecause(ctx, userID, itemID, n)
}

// Neighbors returns the neighborhood of id: similar users in user mode,
// similar items in item mode.
func (e *Engine) Neighbors(ctx context.Context, id string) ([]Neighbor, error) {
	snap := e.snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.recommender.Neighbors(ctx, id)
}

// Model returns the current data model, nil before the first refresh.
func (e *Engine) Model() DataModel {
	snap := e.snapshot()
	if snap == nil {
		return nil
	}
	return snap.model
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	st := Status{
		LastError:       e.lastError,
		RefreshDuration: e.lastRefresh.Milliseconds(),
		Dirty:           e.dirty.Load(),
	}
	e.statusMu.RUnlock()

	if snap := e.snapshot(); snap != nil {
		st.Ready = true
		st.ModelVersion = snap.version
		st.UserCount = snap.model.UsersCount()
		st.ItemCount = snap.model.ItemsCount()
		st.RefreshedAt = snap.refreshedAt
	}
	return st
}
