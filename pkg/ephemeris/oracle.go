// Package ephemeris answers astronomical questions for an observer: when a
// body transits, rises and sets, where it stands in the sky, and how far the
// Moon is through its cycle.
package ephemeris

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ethpandaops/orb/pkg/observer"
)

var (
	// ErrOracle wraps every failure raised while computing ephemeris data
	ErrOracle = errors.New("ephemeris error")
	// ErrInvalidWindow is returned when a search window ends before it starts
	ErrInvalidWindow = errors.New("search window end is before start")
	// ErrUnsupportedBody is returned for bodies the ephemeris has no model for
	ErrUnsupportedBody = errors.New("unsupported body")
)

// Event is one result of a rising or setting search. Crossed is false when
// the body never reached the horizon on that pass; Time is then the moment of
// closest approach (the transit for risings, the antitransit for settings).
type Event struct {
	Time    time.Time
	Crossed bool
}

// Position is an apparent horizontal position in radians. Azimuth is
// measured from north through east.
type Position struct {
	Azimuth  float64
	Altitude float64
}

// Degrees converts the position to degrees
func (p Position) Degrees() Position {
	return Position{
		Azimuth:  p.Azimuth * 180 / math.Pi,
		Altitude: p.Altitude * 180 / math.Pi,
	}
}

// Horizon is the altitude a rising or setting is measured against
type Horizon struct {
	// Degrees is the offset from the horizon, negative below it
	Degrees float64
	// UpperLimb measures the top edge of the disc instead of its centre
	UpperLimb bool
}

// Oracle is the ephemeris contract consumed by the query layer. Every search
// returns events inside [from, to] in ascending order.
type Oracle interface {
	// Name identifies the implementation in logs
	Name() string

	// Transits returns meridian transits of the target body
	Transits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error)

	// Antitransits returns the instants the body's hour angle is 180 degrees
	Antitransits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error)

	// Risings returns ascending crossings of the horizon
	Risings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error)

	// Settings returns descending crossings of the horizon
	Settings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error)

	// Position returns the apparent azimuth and altitude at t
	Position(ctx context.Context, target observer.Target, t time.Time) (Position, error)

	// MoonPhaseAngle returns the Moon-Sun elongation in degrees, 0 at new moon
	MoonPhaseAngle(ctx context.Context, t time.Time) (float64, error)
}

// Crossings keeps only the events where the horizon was actually crossed
func Crossings(events []Event) []time.Time {
	out := make([]time.Time, 0, len(events))
	for _, e := range events {
		if e.Crossed {
			out = append(out, e.Time)
		}
	}

	return out
}
