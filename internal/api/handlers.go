// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/database"
	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/recommend"
)

// Engine is the part of *recommend.Engine the API serves.
type Engine interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Because(ctx context.Context, userID, itemID string, n int) ([]string, error)
	Neighbors(ctx context.Context, id string) ([]recommend.Neighbor, error)
	Refresh(ctx context.Context) error
	Status() recommend.Status
	MarkDirty()
	Config() *recommend.Config
}

// SalesStore is the part of *database.DB the API serves.
type SalesStore interface {
	InsertSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context, filter models.SaleFilter) ([]*models.Sale, error)
	Stats(ctx context.Context) (database.SalesStats, error)
	Ping(ctx context.Context) error
}

// HandlerOptions tunes request handling.
type HandlerOptions struct {
	// Version is reported by the health endpoint.
	Version string
	// RequestTimeout bounds read endpoints. Default: 10s.
	RequestTimeout time.Duration
	// RefreshTimeout bounds POST /refresh. Default: the engine's refresh timeout.
	RefreshTimeout time.Duration
}

// Handler implements the HTTP endpoints.
type Handler struct {
	engine    Engine
	store     SalesStore
	opts      HandlerOptions
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates the endpoint handlers. store may be nil, in which case
// the sales endpoints answer 503.
func NewHandler(engine Engine, store SalesStore, opts HandlerOptions, logger zerolog.Logger) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = engine.Config().Refresh.Timeout
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		store:     store,
		opts:      opts,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// pathParam returns an unescaped chi URL parameter. Item ids contain "#",
// which clients send as %23.
func pathParam(r *http.Request, key string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, key))
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// boolParam parses an optional boolean query parameter.
func boolParam(r *http.Request, key string) (bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	return v, err == nil
}

func badParam(w http.ResponseWriter, r *http.Request, key string) {
	respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameter: "+key, nil)
}
