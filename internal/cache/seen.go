// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package cache

import (
	"sync"
	"time"
)

const (
	defaultSeenCapacity = 10000
	defaultSeenWindow   = 5 * time.Minute
)

type seenEntry struct {
	key        string
	expiresAt  time.Time
	prev, next *seenEntry
}

// SeenSet is a thread-safe LRU set of keys with a per-entry time to live.
// Lookups, inserts and evictions are O(1).
type SeenSet struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	now      func() time.Time

	items map[string]*seenEntry
	// root.next is the most recently seen entry, root.prev the oldest.
	root seenEntry

	hits   int64
	misses int64
}

// SeenStats is a point-in-time view of a SeenSet.
type SeenStats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// NewSeenSet returns a set holding at most capacity keys, each for window.
// Non-positive arguments select the defaults (10000 keys, 5 minutes).
func NewSeenSet(capacity int, window time.Duration) *SeenSet {
	if capacity <= 0 {
		capacity = defaultSeenCapacity
	}
	if window <= 0 {
		window = defaultSeenWindow
	}
	s := &SeenSet{
		capacity: capacity,
		window:   window,
		now:      time.Now,
		items:    make(map[string]*seenEntry, capacity),
	}
	s.root.next = &s.root
	s.root.prev = &s.root
	return s
}

// CheckAndAdd reports whether key was seen within the window. A key that was
// not seen is recorded. A key that was seen is refreshed.
func (s *SeenSet) CheckAndAdd(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.items[key]; ok {
		if now.Before(e.expiresAt) {
			s.hits++
			e.expiresAt = now.Add(s.window)
			s.moveToFront(e)
			return true
		}
		s.unlink(e)
		delete(s.items, key)
	}

	s.misses++
	s.insert(key, now)
	return false
}

// Contains reports whether key is live without changing its recency.
func (s *SeenSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	return ok && s.now().Before(e.expiresAt)
}

// Forget removes key. Used when the event it guards failed to store, so a
// redelivery is processed again.
func (s *SeenSet) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[key]; ok {
		s.unlink(e)
		delete(s.items, key)
	}
}

// Len returns the number of tracked keys, expired ones included until they
// are swept or evicted.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops expired keys and returns how many were removed.
func (s *SeenSet) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	// Walk from the oldest end. Expiry follows recency, so the first live
	// entry ends the sweep.
	for e := s.root.prev; e != &s.root; {
		prev := e.prev
		if now.Before(e.expiresAt) {
			break
		}
		s.unlink(e)
		delete(s.items, e.key)
		removed++
		e = prev
	}
	return removed
}

// Stats returns size and hit counters.
func (s *SeenSet) Stats() SeenStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SeenStats{
		Size:     len(s.items),
		Capacity: s.capacity,
		Hits:     s.hits,
		Misses:   s.misses,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

func (s *SeenSet) insert(key string, now time.Time) {
	for len(s.items) >= s.capacity {
		oldest := s.root.prev
		s.unlink(oldest)
		delete(s.items, oldest.key)
	}
	e := &seenEntry{key: key, expiresAt: now.Add(s.window)}
	s.pushFront(e)
	s.items[key] = e
}

func (s *SeenSet) pushFront(e *seenEntry) {
	e.prev = &s.root
	e.next = s.root.next
	s.root.next.prev = e
	s.root.next = e
}

func (s *SeenSet) unlink(e *seenEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (s *SeenSet) moveToFront(e *seenEntry) {
	if s.root.next == e {
		return
	}
	s.unlink(e)
	s.pushFront(e)
}
