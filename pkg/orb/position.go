package orb

import (
	"context"
	"math"
	"time"

	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observability"
)

// Pos returns the apparent azimuth and altitude at dt shifted by
// minuteOffset, in degrees when degrees is set and radians otherwise.
// Positions are never cached.
func (o *Orb) Pos(ctx context.Context, minuteOffset float64, degrees bool, dt time.Time) (ephemeris.Position, error) {
	start := time.Now()

	pos, err := o.position(ctx, minuteOffset, degrees, dt)

	observability.RecordQuery(o.observer.Name(), "pos", status(err), time.Since(start).Seconds())

	return pos, err
}

func (o *Orb) position(ctx context.Context, minuteOffset float64, degrees bool, dt time.Time) (ephemeris.Position, error) {
	if err := finite(minuteOffset); err != nil {
		return ephemeris.Position{}, err
	}

	at := o.resolve(dt).Add(minutes(minuteOffset))

	pos, err := o.oracle.Position(ctx, o.observer.Target(), at)
	if err != nil {
		return ephemeris.Position{}, oracleError(err)
	}

	if degrees {
		return pos.Degrees(), nil
	}

	return pos, nil
}

// Lunar exposes the queries that only make sense for the Moon
type Lunar struct {
	orb *Orb
}

// Moon returns the lunar queries of the Orb, or ErrMoonOnly when the
// observer watches the Sun
func (o *Orb) Moon() (*Lunar, error) {
	if !o.observer.Body().IsMoon() {
		return nil, ErrMoonOnly
	}

	return &Lunar{orb: o}, nil
}

// Angle returns the Moon-Sun elongation in degrees at dt shifted by
// minuteOffset; 0 is new moon and 180 full moon
func (l *Lunar) Angle(ctx context.Context, minuteOffset float64, dt time.Time) (float64, error) {
	if err := finite(minuteOffset); err != nil {
		return 0, err
	}

	at := l.orb.resolve(dt).Add(minutes(minuteOffset))

	angle, err := l.orb.oracle.MoonPhaseAngle(ctx, at)
	if err != nil {
		return 0, oracleError(err)
	}

	return angle, nil
}

// Phase returns the lunar octant in [0,7]: 0 new moon, 2 first quarter,
// 4 full moon and 6 last quarter
func (l *Lunar) Phase(ctx context.Context, minuteOffset float64, dt time.Time) (int, error) {
	start := time.Now()

	angle, err := l.Angle(ctx, minuteOffset, dt)

	observability.RecordQuery(l.orb.observer.Name(), "phase", status(err), time.Since(start).Seconds())

	if err != nil {
		return 0, err
	}

	return PhaseOctant(angle), nil
}

// Light returns the illuminated percentage of the lunar disc in [0,100]
func (l *Lunar) Light(ctx context.Context, minuteOffset float64, dt time.Time) (int, error) {
	start := time.Now()

	angle, err := l.Angle(ctx, minuteOffset, dt)

	observability.RecordQuery(l.orb.observer.Name(), "light", status(err), time.Since(start).Seconds())

	if err != nil {
		return 0, err
	}

	return Illumination(angle), nil
}

// PhaseOctant maps an elongation in degrees to its octant
func PhaseOctant(angle float64) int {
	octant := int(math.Round(angle/360*8)) % 8
	if octant < 0 {
		octant += 8
	}

	return octant
}

// Illumination maps an elongation in degrees to the lit percentage
func Illumination(angle float64) int {
	return int(math.Round((1 - math.Cos(angle*math.Pi/180)) / 2 * 100))
}
