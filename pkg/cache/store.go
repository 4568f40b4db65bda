package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/observability"
)

// Fetcher loads the events of one key inside [from, to] in ascending order
type Fetcher interface {
	Fetch(ctx context.Context, key Key, from, to time.Time) ([]time.Time, error)
}

// FetchFunc adapts a function to the Fetcher interface
type FetchFunc func(ctx context.Context, key Key, from, to time.Time) ([]time.Time, error)

// Fetch implements Fetcher
func (f FetchFunc) Fetch(ctx context.Context, key Key, from, to time.Time) ([]time.Time, error) {
	return f(ctx, key, from, to)
}

// EntryStats describes one cache entry
type EntryStats struct {
	Key    Key       `json:"-"`
	Name   string    `json:"key"`
	Size   int       `json:"size"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Hits   uint64    `json:"hits"`
	Misses uint64    `json:"misses"`
	Resets uint64    `json:"resets"`
}

// entry holds the events of one key. Every event in [from, to] is present
// in series, so lookups outside that window must fetch.
type entry struct {
	mu     sync.Mutex
	series Series
	from   time.Time
	to     time.Time
	hits   uint64
	misses uint64
	resets uint64
}

func (e *entry) covers(t time.Time) bool {
	return !e.from.IsZero() && !t.Before(e.from) && t.Before(e.to)
}

func (e *entry) touches(from, to time.Time) bool {
	return !e.from.IsZero() && !to.Before(e.from) && !from.After(e.to)
}

func (e *entry) extend(from, to time.Time) {
	if e.from.IsZero() || from.Before(e.from) {
		e.from = from
	}

	if to.After(e.to) {
		e.to = to
	}
}

// Store owns the entries of one observer. Entries are created lazily, locked
// individually and never persisted.
type Store struct {
	name   string
	config Config
	fetch  Fetcher
	log    logrus.FieldLogger

	mu      sync.Mutex
	entries map[Key]*entry
}

// New creates a Store; name labels its logs and metrics
func New(name string, cfg Config, fetcher Fetcher, log logrus.FieldLogger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	return &Store{
		name:    name,
		config:  cfg,
		fetch:   fetcher,
		log:     log.WithFields(logrus.Fields{"component": "cache", "observer": name}),
		entries: make(map[Key]*entry),
	}, nil
}

// Config returns the bounds the store was created with
func (s *Store) Config() Config {
	return s.config
}

// Next returns the earliest event of key strictly after after. Inside the
// covered window a lookup is a binary search; otherwise PrefillHorizon worth
// of events starting at after is fetched and merged into the entry.
func (s *Store) Next(ctx context.Context, key Key, after time.Time) (time.Time, error) {
	after = after.UTC()
	e := s.entry(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.series) > s.config.MaxSize {
		s.resetLocked(key, e, "overflow")
	}

	if e.covers(after) {
		if next, ok := e.series.Next(after); ok {
			e.hits++
			observability.RecordCacheLookup(s.name, key.Kind.String(), "hit")

			return next, nil
		}
	}

	e.misses++
	observability.RecordCacheLookup(s.name, key.Kind.String(), "miss")

	to := after.Add(s.config.PrefillHorizon)

	fetched, err := s.fetch.Fetch(ctx, key, after, to)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching %s: %w", key, err)
	}

	series := normalize(fetched, s.compare)
	if len(series) == 0 {
		return time.Time{}, fmt.Errorf("%w: %s in %s..%s", ErrNoEventFound, key, after.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	// A window that does not touch the covered one would leave a hole, so
	// the old entry is dropped instead of merged.
	if len(e.series) > 0 && !e.touches(after, to) {
		s.resetLocked(key, e, "discontiguous")
	}

	merged := Merge(e.series, series, s.compare)
	if len(merged) > s.config.MaxSize {
		s.resetLocked(key, e, "merge overflow")
		merged = series
	}

	if len(merged) > s.config.MaxSize {
		merged = merged[:s.config.MaxSize]
		to = merged[len(merged)-1]
	}

	e.series = merged
	e.extend(after, to)

	observability.SetCacheEntrySize(s.name, key.String(), len(e.series))

	s.log.WithFields(logrus.Fields{
		"key":     key.String(),
		"fetched": len(series),
		"size":    len(e.series),
		"from":    e.from.Format(time.RFC3339),
		"to":      e.to.Format(time.RFC3339),
	}).Debug("Extended cache entry")

	next, ok := e.series.Next(after)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s after %s", ErrNoEventFound, key, after.Format(time.RFC3339))
	}

	return next, nil
}

// Seed merges times into the entry for key without fetching; the span they
// cover is trusted to be complete. The size bound is enforced on the next
// lookup.
func (s *Store) Seed(key Key, times []time.Time) {
	e := s.entry(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	seeded := normalize(times, s.compare)
	if len(seeded) == 0 {
		return
	}

	e.series = Merge(e.series, seeded, s.compare)
	e.extend(seeded.First(), seeded.Last())

	observability.SetCacheEntrySize(s.name, key.String(), len(e.series))
}

// Snapshot returns a copy of the series cached for key
func (s *Store) Snapshot(key Key) Series {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(Series, len(e.series))
	copy(out, e.series)

	return out
}

// Len returns the number of timestamps cached for key
func (s *Store) Len(key Key) int {
	return len(s.Snapshot(key))
}

// Keys returns the keys with an entry, ordered by name
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	return keys
}

// Reset empties the entry for key
func (s *Store) Reset(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s.resetLocked(key, e, "manual")
}

// Purge drops every entry
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		observability.SetCacheEntrySize(s.name, k.String(), 0)
	}

	s.entries = make(map[Key]*entry)
	s.log.Info("Purged cache")
}

// Stats describes every entry, ordered by key name
func (s *Store) Stats() []EntryStats {
	keys := s.Keys()
	out := make([]EntryStats, 0, len(keys))

	for _, k := range keys {
		s.mu.Lock()
		e := s.entries[k]
		s.mu.Unlock()

		if e == nil {
			continue
		}

		e.mu.Lock()
		out = append(out, EntryStats{
			Key:    k,
			Name:   k.String(),
			Size:   len(e.series),
			First:  e.series.First(),
			Last:   e.series.Last(),
			From:   e.from,
			To:     e.to,
			Hits:   e.hits,
			Misses: e.misses,
			Resets: e.resets,
		})
		e.mu.Unlock()
	}

	return out
}

func (s *Store) entry(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}

	return e
}

// resetLocked discards the whole entry; the caller holds e.mu
func (s *Store) resetLocked(key Key, e *entry, reason string) {
	s.log.WithFields(logrus.Fields{
		"key":    key.String(),
		"size":   len(e.series),
		"reason": reason,
	}).Info("Resetting cache entry")

	e.series = nil
	e.from = time.Time{}
	e.to = time.Time{}
	e.resets++

	observability.RecordCacheReset(s.name, key.Kind.String())
	observability.SetCacheEntrySize(s.name, key.String(), 0)
}

// compare orders times, treating those within MergeTolerance as equal
func (s *Store) compare(a, b time.Time) int {
	d := a.Sub(b)
	if d == 0 || d.Abs() < s.config.MergeTolerance {
		return 0
	}

	if d < 0 {
		return -1
	}

	return 1
}
