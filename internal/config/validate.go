// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package config

import (
	"fmt"

	"github.com/tomtom215/salerec/internal/recommend/pairwise"
	"github.com/tomtom215/salerec/internal/recommend/strategy"
	"github.com/tomtom215/salerec/internal/validation"
)

// Validate checks struct tags first, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.GetValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if _, err := pairwise.ParseMetric(c.Recommend.Metric); err != nil {
		return fmt.Errorf("recommend.metric: %w", err)
	}
	switch strategy.Kind(c.Recommend.Strategy) {
	case "", strategy.KindAll, strategy.KindNearest:
	default:
		return fmt.Errorf("recommend.strategy must be %q or %q, got %q",
			strategy.KindAll, strategy.KindNearest, c.Recommend.Strategy)
	}
	if c.NATS.Enabled && (c.NATS.URL == "" || c.NATS.Topic == "") {
		return fmt.Errorf("nats.url and nats.topic are required when nats.enabled=true")
	}
	if !c.Server.RateLimitDisabled && c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.IsProduction() {
		for _, o := range c.Server.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("server.cors_origins must not contain \"*\" in production")
			}
		}
	}
	return nil
}
