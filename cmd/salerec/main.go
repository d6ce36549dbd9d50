// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package main is the entry point for the salerec command.
//
// salerec stores sales records (user, brand, product) in DuckDB and serves
// collaborative-filtering recommendations built from them. Items are the
// "brand###product" features a user bought.
//
// # Commands
//
//	salerec serve                      # HTTP API, refresh loop, optional NATS ingest
//	salerec import sales.csv           # bulk load CSV or Parquet files
//	salerec recommend alice -n 5       # one-shot recommendations
//	salerec neighbors alice            # neighborhood of a user or item
//	salerec segments                   # k-means segmentation of users
//	salerec publish alice acme widget  # publish a sale event to NATS
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (a .env file in the working directory is read first)
//   - Config file (config.yaml, or --config)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down gracefully on SIGINT and SIGTERM. In-flight requests get
// server.shutdown_timeout to complete before the database is closed.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "salerec",
		Short:         "Collaborative filtering recommendations over sales records",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: config.yaml search path)")
	f.StringVar(&opts.logLevel, "log-level", "", "Override logging.level")

	root.AddCommand(
		newServeCommand(opts),
		newImportCommand(opts),
		newRecommendCommand(opts),
		newNeighborsCommand(opts),
		newSegmentsCommand(opts),
		newPublishCommand(opts),
	)
	return root
}
