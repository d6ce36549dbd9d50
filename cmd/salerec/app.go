// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/config"
	"github.com/tomtom215/salerec/internal/database"
	"github.com/tomtom215/salerec/internal/logging"
	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/builder"
)

// app holds what every command shares: configuration, logging and, once
// opened, the sales database.
type app struct {
	cfg    *config.Config
	db     *database.DB
	logger zerolog.Logger
}

func newApp(opts *rootOptions) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logging.Init(cfg.Logging)
	return &app{cfg: cfg, logger: logging.Logger()}, nil
}

func (a *app) openDatabase(ctx context.Context) error {
	db, err := database.Open(ctx, &a.cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.logger.Info().Str("db_path", db.Path()).Msg("Database opened")
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing database")
	}
}

// dataProvider reads boolean purchase sets, or purchase counts when the
// engine is configured for explicit preferences.
func (a *app) dataProvider() recommend.DataProvider {
	if a.cfg.Recommend.Model == recommend.ModelExplicit {
		return database.CountProvider{DB: a.db}
	}
	return a.db
}

func (a *app) newEngine() (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(&a.cfg.Recommend, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetDataProvider(a.dataProvider())
	engine.SetFactory(builder.NewFactory(logging.WithComponent("recommend")))
	return engine, nil
}

// refreshedEngine opens the database and builds a model once, for the
// one-shot query commands.
func (a *app) refreshedEngine(ctx context.Context) (*recommend.Engine, error) {
	if err := a.openDatabase(ctx); err != nil {
		return nil, err
	}
	engine, err := a.newEngine()
	if err != nil {
		return nil, err
	}
	if err := engine.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	return engine, nil
}
