// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package cache provides the bounded recency set used to drop redelivered
sale events.

JetStream delivers at least once. A sale event that is redelivered after a
slow ack would otherwise be stored twice and count as a second purchase in
the explicit (count based) model. SeenSet remembers event IDs for a window
and evicts the least recently seen ID once full.

	seen := cache.NewSeenSet(100000, 10*time.Minute)
	if seen.CheckAndAdd(evt.EventID) {
	    return nil // duplicate, ack and drop
	}

All methods are safe for concurrent use.
*/
package cache
