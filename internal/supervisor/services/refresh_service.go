// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
)

// RefreshEngine is the part of *recommend.Engine the service drives.
type RefreshEngine interface {
	Refresh(ctx context.Context) error
	Dirty() bool
}

// RefreshServiceConfig controls when the model is rebuilt.
type RefreshServiceConfig struct {
	// RefreshOnStartup builds the first model as soon as the service runs.
	RefreshOnStartup bool

	// Interval forces a rebuild. Default: 1h.
	Interval time.Duration

	// DirtyCheck is how often the dirty flag is polled. 0 disables.
	DirtyCheck time.Duration
}

// RefreshServiceConfigFrom maps the engine's refresh section.
func RefreshServiceConfigFrom(cfg recommend.RefreshConfig) RefreshServiceConfig {
	return RefreshServiceConfig{
		RefreshOnStartup: true,
		Interval:         cfg.Interval,
		DirtyCheck:       cfg.DirtyCheck,
	}
}

// RefreshService keeps the engine's model current.
type RefreshService struct {
	engine RefreshEngine
	config RefreshServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRefreshService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(engine RefreshEngine, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &RefreshService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "refresh").Logger(),
		name:   "refresh-service",
	}
}

// Serve implements suture.Service. Refresh failures are logged and retried
// on the next tick; they never stop the service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refresh_on_startup", s.config.RefreshOnStartup).
		Dur("interval", s.config.Interval).
		Dur("dirty_check", s.config.DirtyCheck).
		Msg("refresh service starting")

	if s.config.RefreshOnStartup {
		s.refresh(ctx, "startup")
	}

	interval := time.NewTicker(s.config.Interval)
	defer interval.Stop()

	// A nil channel never fires, which disables dirty polling.
	var dirtyC <-chan time.Time
	if s.config.DirtyCheck > 0 {
		dirty := time.NewTicker(s.config.DirtyCheck)
		defer dirty.Stop()
		dirtyC = dirty.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh service shutting down")
			return ctx.Err()
		case <-interval.C:
			s.refresh(ctx, "interval")
		case <-dirtyC:
			if s.engine.Dirty() {
				s.refresh(ctx, "dirty")
			}
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context, reason string) {
	start := time.Now()
	err := s.engine.Refresh(ctx)
	switch {
	case err == nil:
		s.logger.Debug().Str("reason", reason).Dur("duration", time.Since(start)).Msg("model refreshed")
	case errors.Is(err, recommend.ErrRefreshInProgress):
		s.logger.Debug().Str("reason", reason).Msg("refresh skipped, another is running")
	case errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Warn().Err(err).Str("reason", reason).Msg("not enough sales to build a model yet")
	case ctx.Err() != nil:
		// Shutting down.
	default:
		s.logger.Error().Err(err).Str("reason", reason).Msg("model refresh failed")
	}
}

func (s *RefreshService) String() string {
	return s.name
}
