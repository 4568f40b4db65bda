// Package orb answers "when is the next noon, midnight, rise or set" for one
// observer watching the Sun or the Moon. Every event has a cached and an
// uncached path: the cached one serves repeated queries from a per-observer
// event cache, the uncached one asks the ephemeris every time.
package orb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observability"
	"github.com/ethpandaops/orb/pkg/observer"
)

const (
	// uncachedWindow bounds the search of the uncached path
	uncachedWindow = 48 * time.Hour
)

// Option configures an Orb
type Option func(*Orb)

// WithClock replaces the clock used when a query passes a zero time
func WithClock(now func() time.Time) Option {
	return func(o *Orb) {
		if now != nil {
			o.now = now
		}
	}
}

// Orb resolves events for one observer. It owns its event cache and is safe
// for concurrent use.
type Orb struct {
	observer *observer.Observer
	oracle   ephemeris.Oracle
	store    *cache.Store
	log      logrus.FieldLogger
	now      func() time.Time
}

// New creates an Orb whose cache is bounded by cfg
func New(obs *observer.Observer, oracle ephemeris.Oracle, cfg cache.Config, log logrus.FieldLogger, opts ...Option) (*Orb, error) {
	if obs == nil {
		return nil, ErrObserverRequired
	}

	if oracle == nil {
		return nil, ErrOracleRequired
	}

	o := &Orb{
		observer: obs,
		oracle:   oracle,
		log: log.WithFields(logrus.Fields{
			"component": "orb",
			"observer":  obs.Name(),
			"body":      obs.Body().String(),
		}),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	store, err := cache.New(obs.Name(), cfg, cache.FetchFunc(o.fetch), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event cache: %w", err)
	}

	o.store = store

	return o, nil
}

// Observer returns the observer the Orb resolves events for
func (o *Orb) Observer() *observer.Observer {
	return o.observer
}

// Cache returns the event cache owned by the Orb
func (o *Orb) Cache() *cache.Store {
	return o.store
}

// Noon returns the next meridian transit after dt shifted by minuteOffset
func (o *Orb) Noon(ctx context.Context, minuteOffset float64, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventNoon, Request{MinuteOffset: minuteOffset, At: dt})
}

// NoonCached is Noon served from the event cache
func (o *Orb) NoonCached(ctx context.Context, minuteOffset float64, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventNoon, Request{Cached: true, MinuteOffset: minuteOffset, At: dt})
}

// Midnight returns the next antitransit after dt shifted by minuteOffset
func (o *Orb) Midnight(ctx context.Context, minuteOffset float64, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventMidnight, Request{MinuteOffset: minuteOffset, At: dt})
}

// MidnightCached is Midnight served from the event cache
func (o *Orb) MidnightCached(ctx context.Context, minuteOffset float64, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventMidnight, Request{Cached: true, MinuteOffset: minuteOffset, At: dt})
}

// Rise returns the next time after dt the body climbs through degreeOffset,
// shifted by minuteOffset. With useCenter false the upper limb is measured.
func (o *Orb) Rise(ctx context.Context, degreeOffset, minuteOffset float64, useCenter bool, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventRise, Request{
		DegreeOffset: degreeOffset,
		MinuteOffset: minuteOffset,
		UseCenter:    useCenter,
		At:           dt,
	})
}

// RiseCached is Rise served from the event cache
func (o *Orb) RiseCached(ctx context.Context, degreeOffset, minuteOffset float64, useCenter bool, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventRise, Request{
		Cached:       true,
		DegreeOffset: degreeOffset,
		MinuteOffset: minuteOffset,
		UseCenter:    useCenter,
		At:           dt,
	})
}

// Set returns the next time after dt the body sinks through degreeOffset,
// shifted by minuteOffset
func (o *Orb) Set(ctx context.Context, degreeOffset, minuteOffset float64, useCenter bool, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventSet, Request{
		DegreeOffset: degreeOffset,
		MinuteOffset: minuteOffset,
		UseCenter:    useCenter,
		At:           dt,
	})
}

// SetCached is Set served from the event cache
func (o *Orb) SetCached(ctx context.Context, degreeOffset, minuteOffset float64, useCenter bool, dt time.Time) (time.Time, error) {
	return o.Lookup(ctx, EventSet, Request{
		Cached:       true,
		DegreeOffset: degreeOffset,
		MinuteOffset: minuteOffset,
		UseCenter:    useCenter,
		At:           dt,
	})
}

// Lookup resolves the next occurrence of event described by req
func (o *Orb) Lookup(ctx context.Context, event Event, req Request) (time.Time, error) {
	op := event.String()
	if req.Cached {
		op += "_cached"
	}

	start := time.Now()

	result, err := o.lookup(ctx, event, req)

	observability.RecordQuery(o.observer.Name(), op, status(err), time.Since(start).Seconds())

	if err != nil {
		return time.Time{}, err
	}

	o.log.WithFields(logrus.Fields{
		"operation":     op,
		"degree_offset": req.DegreeOffset,
		"minute_offset": req.MinuteOffset,
		"center":        req.UseCenter,
		"at":            req.At,
		"result":        result.Format(time.RFC3339),
	}).Debug("Resolved event")

	return result, nil
}

func (o *Orb) lookup(ctx context.Context, event Event, req Request) (time.Time, error) {
	if event.Kind() == 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnknownEvent, event)
	}

	if err := finite(req.DegreeOffset, req.MinuteOffset); err != nil {
		return time.Time{}, err
	}

	after := o.resolve(req.At)
	key := cache.NewKey(event.Kind(), req.DegreeOffset, !req.UseCenter)

	var (
		next time.Time
		err  error
	)

	if req.Cached {
		next, err = o.store.Next(ctx, key, after)
	} else {
		next, err = o.uncached(ctx, key, after)
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("%s for %s: %w", event, o.observer.Name(), err)
	}

	return next.Add(minutes(req.MinuteOffset)), nil
}

// uncached runs a fresh bounded search and returns its first event strictly
// after after
func (o *Orb) uncached(ctx context.Context, key cache.Key, after time.Time) (time.Time, error) {
	if key.Kind.HasHorizon() && key.Offset != 0 {
		extreme, reachable, err := o.reachable(ctx, key.Offset, after)
		if err != nil {
			return time.Time{}, err
		}

		// An offset beyond the extremum altitude is met at the extremum itself
		if !reachable {
			return extreme, nil
		}
	}

	to := after.Add(uncachedWindow)

	times, err := o.fetch(ctx, key, after, to)
	if err != nil {
		return time.Time{}, err
	}

	for _, t := range times {
		if t.After(after) {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %s in %s..%s", ErrNoEventFound, key, after.Format(time.RFC3339), to.Format(time.RFC3339))
}

// reachable reports whether the body reaches a degree offset around after.
// A negative offset is checked against the next antitransit altitude, a
// positive one against the next transit altitude. The extremum instant is
// returned either way.
func (o *Orb) reachable(ctx context.Context, offset float64, after time.Time) (time.Time, bool, error) {
	kind := cache.KindTransit
	if offset < 0 {
		kind = cache.KindAntitransit
	}

	extreme, err := o.uncached(ctx, cache.NewKey(kind, 0, false), after)
	if err != nil {
		return time.Time{}, false, err
	}

	pos, err := o.oracle.Position(ctx, o.observer.Target(), extreme)
	if err != nil {
		return time.Time{}, false, oracleError(err)
	}

	altitude := pos.Degrees().Altitude

	ok := altitude >= offset
	if offset < 0 {
		ok = altitude <= offset
	}

	if !ok {
		o.log.WithFields(logrus.Fields{
			"offset":    offset,
			"truncated": altitude,
			"extreme":   extreme.Format(time.RFC3339),
		}).Warn("Degree offset is out of reach, truncating")
	}

	return extreme, ok, nil
}

// fetch serves the cache: it maps a key to the matching ephemeris search and
// keeps only real horizon crossings
func (o *Orb) fetch(ctx context.Context, key cache.Key, from, to time.Time) ([]time.Time, error) {
	target := o.observer.Target()

	var (
		times []time.Time
		err   error
	)

	switch key.Kind {
	case cache.KindTransit:
		times, err = o.oracle.Transits(ctx, target, from, to)
	case cache.KindAntitransit:
		times, err = o.oracle.Antitransits(ctx, target, from, to)
	case cache.KindRising, cache.KindSetting:
		var events []ephemeris.Event

		events, err = o.horizonEvents(ctx, key, from, to)
		times = ephemeris.Crossings(events)
	default:
		return nil, fmt.Errorf("%w: %s", cache.ErrUnknownKind, key.Kind)
	}

	if err != nil {
		return nil, oracleError(err)
	}

	return times, nil
}

func (o *Orb) horizonEvents(ctx context.Context, key cache.Key, from, to time.Time) ([]ephemeris.Event, error) {
	horizon := ephemeris.Horizon{Degrees: key.Offset, UpperLimb: key.UpperLimb}

	if key.Kind == cache.KindRising {
		return o.oracle.Risings(ctx, o.observer.Target(), from, to, horizon)
	}

	return o.oracle.Settings(ctx, o.observer.Target(), from, to, horizon)
}

// resolve turns a zero reference time into now
func (o *Orb) resolve(dt time.Time) time.Time {
	if dt.IsZero() {
		dt = o.now()
	}

	return dt.UTC()
}

func finite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidOffset, v)
		}
	}

	return nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
