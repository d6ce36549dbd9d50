// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package ingest consumes sale events from NATS JetStream and stores them.

Each message carries one JSON encoded SaleEvent. The Handler decodes and
validates it, drops redeliveries by event ID, writes the sale through a
circuit breaker and marks the recommendation engine dirty so the next
refresh picks the sale up.

Error classes:

  - malformed or invalid events are permanent: logged, counted and acked
  - storage failures are transient: the message is nacked and JetStream
    redelivers it up to nats.max_deliver times
  - an open breaker rejects writes without touching the database, which
    also nacks

Wiring:

	sub, err := ingest.NewNATSSubscriber(cfg.NATS, logging.NewWatermillAdapter(logger))
	h := ingest.NewHandler(db, engine, cfg.NATS, logger)
	c := ingest.NewConsumer(sub, cfg.NATS.Topic, h, logger)
	err = c.Run(ctx)
*/
package ingest
