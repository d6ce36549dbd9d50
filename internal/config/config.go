// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package config

import (
	"time"

	"github.com/tomtom215/salerec/internal/logging"
	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/cluster"
)

// Environments accepted by Server.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the complete application configuration.
type Config struct {
	Database  DatabaseConfig   `koanf:"database"`
	Recommend recommend.Config `koanf:"recommend"`
	Cluster   cluster.KMeans   `koanf:"cluster"`
	Server    ServerConfig     `koanf:"server"`
	NATS      NATSConfig       `koanf:"nats"`
	Import    ImportConfig     `koanf:"import"`
	Logging   logging.Config   `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB sales store.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" or "" opens an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory_limit setting, e.g. "1GB".
	MaxMemory string `koanf:"max_memory" validate:"omitempty,max=16"`

	// Threads is DuckDB's thread count. 0 lets DuckDB decide.
	Threads int `koanf:"threads" validate:"gte=0,lte=256"`

	// QueryTimeout bounds a single query.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development production"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// NATSConfig configures sale event ingestion from NATS JetStream.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url" validate:"omitempty,url"`

	// Topic carries sale events. Default: sales.recorded
	Topic string `koanf:"topic"`

	// StreamName binds to an existing stream instead of auto-provisioning.
	StreamName       string        `koanf:"stream_name"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count" validate:"gte=1"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout" validate:"gt=0"`
	CloseTimeout     time.Duration `koanf:"close_timeout" validate:"gt=0"`
	MaxDeliver       int           `koanf:"max_deliver" validate:"gte=1"`
	MaxAckPending    int           `koanf:"max_ack_pending" validate:"gte=1"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`

	// Redelivered event IDs seen within DedupWindow are acked and dropped.
	DedupWindow  time.Duration `koanf:"dedup_window"`
	DedupEntries int           `koanf:"dedup_entries" validate:"gte=0"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker guarding sale writes.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
}

// ImportConfig configures file import.
type ImportConfig struct {
	// BatchSize is the number of rows inserted per transaction.
	BatchSize int `koanf:"batch_size" validate:"gte=1,lte=100000"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// defaultConfig returns the built-in defaults, applied before file and env.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/salerec.duckdb",
			MaxMemory:    "1GB",
			QueryTimeout: 30 * time.Second,
		},
		Recommend: *recommend.DefaultConfig(),
		Cluster:   cluster.DefaultKMeans(),
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     EnvDevelopment,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		NATS: NATSConfig{
			Enabled:          false,
			URL:              "nats://127.0.0.1:4222",
			Topic:            "sales.recorded",
			DurableName:      "salerec-ingest",
			QueueGroup:       "salerec",
			SubscribersCount: 2,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     30 * time.Second,
			MaxDeliver:       5,
			MaxAckPending:    1000,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
			DedupWindow:      10 * time.Minute,
			DedupEntries:     100000,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Import: ImportConfig{
			BatchSize: 1000,
		},
		Logging: logging.Config{
			Level:     "info",
			Format:    "json",
			Timestamp: true,
		},
	}
}
