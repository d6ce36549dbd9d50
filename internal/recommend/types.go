// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package recommend

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Neighbor is a (other id, score) pair produced by a similarity lookup.
// A NaN score means the similarity is undefined for the pair.
type Neighbor struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Defined reports whether the score is a usable number.
func (n Neighbor) Defined() bool {
	return !math.IsNaN(n.Score)
}

// ScoredItem is an item with an estimated preference.
type ScoredItem struct {
	// ItemID is the recommended item identifier.
	ItemID string `json:"item_id"`

	// Score is the estimated preference of the user for the item.
	Score float64 `json:"score"`

	// Because lists the user's items that contributed most to the estimate.
	// Only filled when explanations are requested.
	Because []string `json:"because,omitempty"`
}

// DataModel exposes a user×item preference matrix.
//
// Row order is given by UserIDs and column order by ItemIDs; both are
// stable for the lifetime of the model. Explicit models use NaN for
// "no opinion", boolean models use 0.
type DataModel interface {
	// UserIDs returns the row identifiers in matrix order.
	UserIDs() []string

	// ItemIDs returns the column identifiers in matrix order.
	ItemIDs() []string

	// UsersCount returns the number of rows.
	UsersCount() int

	// ItemsCount returns the number of columns.
	ItemsCount() int

	// HasUser reports whether id is a row of the model.
	HasUser(id string) bool

	// PreferencesFromUser returns a copy of the user's preference row.
	PreferencesFromUser(userID string) ([]float64, error)

	// ItemSetFromUser returns the items the user has a preference for.
	ItemSetFromUser(userID string) ([]string, error)

	// PreferenceValue returns a single preference, NaN when the user has no opinion.
	PreferenceValue(userID, itemID string) (float64, error)

	// HasPreferenceValues reports whether the model stores explicit ratings.
	// Boolean models return false.
	HasPreferenceValues() bool

	// Matrix returns the preference matrix. Callers must not modify it.
	Matrix() mat.Matrix

	// Transpose returns the item-major view of the model: items become rows.
	Transpose() DataModel
}

// Recommender produces ranked recommendations from a data model.
type Recommender interface {
	// Recommend returns up to n items the user has not interacted with,
	// sorted by descending estimated preference.
	Recommend(ctx context.Context, userID string, n int) ([]ScoredItem, error)

	// RecommendedBecause returns up to n of the user's items that explain
	// why itemID would be recommended.
	RecommendedBecause(ctx context.Context, userID, itemID string, n int) ([]string, error)

	// Neighbors returns the neighborhood of id: similar users for a
	// user-based recommender, similar items for an item-based one.
	Neighbors(ctx context.Context, id string) ([]Neighbor, error)
}

// Request is a recommendation request.
type Request struct {
	// UserID is the user to recommend for.
	UserID string `json:"user_id" validate:"required,max=64"`

	// N is the number of recommendations. Zero uses the configured default.
	N int `json:"n,omitempty" validate:"gte=0,lte=1000"`

	// Explain fills ScoredItem.Because for every recommendation.
	Explain bool `json:"explain,omitempty"`

	// ExplainN bounds the number of explaining items. Zero uses the configured default.
	ExplainN int `json:"explain_n,omitempty" validate:"gte=0,lte=100"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a recommendation response.
type Response struct {
	Items    []ScoredItem     `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	Mode         string    `json:"mode"`
	Metric       string    `json:"metric"`
	LatencyMS    int64     `json:"latency_ms"`
	ModelVersion int       `json:"model_version"`
	RefreshedAt  time.Time `json:"refreshed_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// Status describes the engine's current model snapshot.
type Status struct {
	Ready           bool      `json:"ready"`
	ModelVersion    int       `json:"model_version"`
	UserCount       int       `json:"user_count"`
	ItemCount       int       `json:"item_count"`
	RefreshedAt     time.Time `json:"refreshed_at"`
	RefreshDuration int64     `json:"refresh_duration_ms"`
	LastError       string    `json:"last_error,omitempty"`
	Dirty           bool      `json:"dirty"`
}
