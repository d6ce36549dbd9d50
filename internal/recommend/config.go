// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package recommend

import (
	"fmt"
	"time"
)

// Recommendation modes.
const (
	ModeUser = "user"
	ModeItem = "item"
)

// Data model kinds.
const (
	ModelBoolean  = "boolean"
	ModelExplicit = "explicit"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Mode is "user" (user-based) or "item" (item-based).
	// Default: item.
	Mode string `koanf:"mode" json:"mode"`

	// Model is "boolean" (purchased or not) or "explicit" (rated).
	// Default: boolean.
	Model string `koanf:"model" json:"model"`

	// Metric is the pairwise similarity metric name.
	// Default: loglikelihood.
	Metric string `koanf:"metric" json:"metric"`

	// Strategy is the candidate neighbor strategy for user-based mode,
	// "all" or "nearest". Default: nearest.
	Strategy string `koanf:"strategy" json:"strategy"`

	// NeighborhoodSize bounds neighborhoods. 0 means unbounded.
	NeighborhoodSize int `koanf:"neighborhood_size" json:"neighborhood_size"`

	// MinimalSimilarity drops neighbors scoring below it.
	// Default: 0.0.
	MinimalSimilarity float64 `koanf:"minimal_similarity" json:"minimal_similarity"`

	// Capper clamps explicit estimates to the observed rating range.
	// Default: true.
	Capper bool `koanf:"capper" json:"capper"`

	// Refresh contains model refresh parameters.
	Refresh RefreshConfig `koanf:"refresh" json:"refresh"`

	// Limits contains request limits.
	Limits LimitsConfig `koanf:"limits" json:"limits"`
}

// RefreshConfig contains model refresh parameters.
type RefreshConfig struct {
	// Interval is the time between scheduled refreshes. A pending
	// ingestion (dirty engine) is checked on the same tick.
	// Default: 1h.
	Interval time.Duration `koanf:"interval" json:"interval"`

	// DirtyCheck is how often the dirty flag is polled.
	// Default: 30s.
	DirtyCheck time.Duration `koanf:"dirty_check" json:"dirty_check"`

	// Timeout bounds one refresh.
	// Default: 10m.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// MinUsers is the minimum number of users needed to build a model.
	// Default: 2.
	MinUsers int `koanf:"min_users" json:"min_users"`

	// WarmWorkers precomputes every neighborhood after a refresh with this
	// many goroutines. 0 disables warming.
	WarmWorkers int `koanf:"warm_workers" json:"warm_workers"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultN is the number of recommendations when a request asks for 0.
	// Default: 10.
	DefaultN int `koanf:"default_n" json:"default_n"`

	// MaxN caps the number of recommendations.
	// Default: 100.
	MaxN int `koanf:"max_n" json:"max_n"`

	// DefaultExplainN is the number of "because" items per recommendation.
	// Default: 2.
	DefaultExplainN int `koanf:"default_explain_n" json:"default_explain_n"`
}

// DefaultConfig returns the defaults:
// item-based, boolean purchases, log-likelihood similarity.
func DefaultConfig() *Config {
	return &Config{
		Mode:              ModeItem,
		Model:             ModelBoolean,
		Metric:            "loglikelihood",
		Strategy:          "nearest",
		NeighborhoodSize:  0,
		MinimalSimilarity: 0.0,
		Capper:            true,
		Refresh: RefreshConfig{
			Interval:    time.Hour,
			DirtyCheck:  30 * time.Second,
			Timeout:     10 * time.Minute,
			MinUsers:    2,
			WarmWorkers: 0,
		},
		Limits: LimitsConfig{
			DefaultN:        10,
			MaxN:            100,
			DefaultExplainN: 2,
		},
	}
}

// Validate checks the configuration for errors. Metric names are checked
// by the factory that builds the recommender.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeUser, ModeItem:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeUser, ModeItem, c.Mode)
	}
	switch c.Model {
	case ModelBoolean, ModelExplicit:
	default:
		return fmt.Errorf("model must be %q or %q, got %q", ModelBoolean, ModelExplicit, c.Model)
	}

	if c.NeighborhoodSize < 0 {
		return fmt.Errorf("neighborhood_size must be non-negative, got %d", c.NeighborhoodSize)
	}

	if c.Refresh.Timeout <= 0 {
		return fmt.Errorf("refresh.timeout must be positive, got %v", c.Refresh.Timeout)
	}
	if c.Refresh.MinUsers < 0 {
		return fmt.Errorf("refresh.min_users must be non-negative, got %d", c.Refresh.MinUsers)
	}
	if c.Refresh.WarmWorkers < 0 {
		return fmt.Errorf("refresh.warm_workers must be non-negative, got %d", c.Refresh.WarmWorkers)
	}

	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}
	if c.Limits.DefaultExplainN < 0 {
		return fmt.Errorf("limits.default_explain_n must be non-negative, got %d", c.Limits.DefaultExplainN)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
