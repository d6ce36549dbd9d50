// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package config loads Salerec configuration from layered sources.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, config.yaml, config.yml,
//     /etc/salerec/config.yaml
//  3. Environment variables listed in envMappings
//
// The merged result is validated with struct tags (go-playground/validator)
// followed by cross-field checks.
//
// Example config.yaml:
//
//	database:
//	  path: /data/salerec.duckdb
//	recommend:
//	  mode: user
//	  metric: euclidean
//	  neighborhood_size: 20
//	nats:
//	  enabled: true
//	  url: nats://127.0.0.1:4222
package config
