package ephemeris

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mooncaker816/learnmeeus/v3/base"
	"github.com/mooncaker816/learnmeeus/v3/coord"
	"github.com/mooncaker816/learnmeeus/v3/globe"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/moonposition"
	"github.com/mooncaker816/learnmeeus/v3/nutation"
	"github.com/mooncaker816/learnmeeus/v3/parallax"
	"github.com/mooncaker816/learnmeeus/v3/sidereal"
	"github.com/mooncaker816/learnmeeus/v3/solar"
	"github.com/sirupsen/logrus"
	"github.com/soniakeys/unit"

	"github.com/ethpandaops/orb/pkg/observer"
)

const (
	degree       = math.Pi / 180
	moonRadiusKm = 1737.4
)

//nolint:gochecknoglobals // derived astronomical constants
var (
	// standard refraction at the horizon
	horizonRefraction = unit.AngleFromMin(34).Rad()
	// mean apparent solar semidiameter
	sunSemidiameter = unit.AngleFromSec(959.63).Rad()
	// solar horizontal parallax at 1 AU
	sunParallax = unit.AngleFromSec(8.794).Rad()
)

// equatorial is an apparent geocentric place
type equatorial struct {
	ra           float64
	dec          float64
	parallax     float64
	semidiameter float64
}

// Meeus is an Oracle built on the algorithms of Jean Meeus' Astronomical
// Algorithms: low precision solar theory, ELP-derived lunar series, IAU 1980
// nutation and apparent sidereal time. Results agree with JPL ephemerides to
// well under a minute for rise, set and transit times.
type Meeus struct {
	log  logrus.FieldLogger
	step time.Duration
}

// MeeusOption customises a Meeus oracle
type MeeusOption func(*Meeus)

// WithSearchStep sets the sampling interval used to bracket events
func WithSearchStep(step time.Duration) MeeusOption {
	return func(m *Meeus) {
		if step > 0 {
			m.step = step
		}
	}
}

// NewMeeus creates a Meeus oracle
func NewMeeus(log logrus.FieldLogger, opts ...MeeusOption) *Meeus {
	m := &Meeus{
		log:  log.WithField("component", "ephemeris"),
		step: 30 * time.Minute,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Name implements Oracle
func (m *Meeus) Name() string {
	return "meeus"
}

// Transits implements Oracle
func (m *Meeus) Transits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	return m.hourAngleEvents(ctx, target, from, to, 0)
}

// Antitransits implements Oracle
func (m *Meeus) Antitransits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	return m.hourAngleEvents(ctx, target, from, to, math.Pi)
}

// Risings implements Oracle
func (m *Meeus) Risings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	return m.horizonEvents(ctx, target, from, to, horizon, true)
}

// Settings implements Oracle
func (m *Meeus) Settings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	return m.horizonEvents(ctx, target, from, to, horizon, false)
}

// Position implements Oracle
func (m *Meeus) Position(ctx context.Context, target observer.Target, t time.Time) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	if !target.Body.Valid() {
		return Position{}, fmt.Errorf("%w: %w: %s", ErrOracle, ErrUnsupportedBody, target.Body)
	}

	az, alt, _ := horizontal(target, julian.TimeToJD(t.UTC()))

	return Position{Azimuth: az, Altitude: alt}, nil
}

// MoonPhaseAngle implements Oracle
func (m *Meeus) MoonPhaseAngle(ctx context.Context, t time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	jde := ephemerisDay(julian.TimeToJD(t.UTC()))

	λm, _, _ := moonposition.Position(jde)
	Δψ, _ := nutation.Nutation(jde)
	λs := solar.ApparentLongitude(base.J2000Century(jde))

	elongation := normalize(λm.Rad() + Δψ.Rad() - λs.Rad())

	return elongation / degree, nil
}

func (m *Meeus) hourAngleEvents(ctx context.Context, target observer.Target, from, to time.Time, at float64) ([]time.Time, error) {
	jd0, jd1, err := m.window(target, from, to)
	if err != nil {
		return nil, err
	}

	f := func(jd float64) float64 {
		_, _, ha := horizontal(target, jd)
		return wrapPi(ha - at)
	}

	// The hour angle only increases, so descending sign changes are the
	// wrap from +180 to -180 and are skipped.
	found, err := findCrossings(ctx, jd0, jd1, m.stepDays(), f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	out := make([]time.Time, 0, len(found))
	for _, c := range found {
		if c.ascending {
			out = append(out, jdToTime(c.jd))
		}
	}

	m.log.WithFields(logrus.Fields{
		"target": target.String(),
		"hour":   at / degree,
		"events": len(out),
	}).Debug("Hour angle search complete")

	return out, nil
}

func (m *Meeus) horizonEvents(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon, rising bool) ([]Event, error) {
	jd0, jd1, err := m.window(target, from, to)
	if err != nil {
		return nil, err
	}

	f := func(jd float64) float64 {
		eq := apparentEquatorial(target.Body, jd)
		_, alt, _ := horizontalFrom(target.Location, eq, jd)
		return alt - horizon.altitude(eq)
	}

	found, err := findCrossings(ctx, jd0, jd1, m.stepDays(), f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	events := make([]Event, 0, len(found))
	for _, c := range found {
		if c.ascending == rising {
			events = append(events, Event{Time: jdToTime(c.jd), Crossed: true})
		}
	}

	// Passes where the body stays on one side of the horizon are reported at
	// the closest approach: transit for risings, antitransit for settings.
	closest := math.Pi
	if rising {
		closest = 0
	}

	extremes, err := m.hourAngleEvents(ctx, target, from, to, closest)
	if err != nil {
		return nil, err
	}

	for _, t := range extremes {
		v := f(julian.TimeToJD(t))
		if (rising && v < 0) || (!rising && v > 0) {
			events = append(events, Event{Time: t, Crossed: false})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	return events, nil
}

func (m *Meeus) window(target observer.Target, from, to time.Time) (jd0, jd1 float64, err error) {
	if !target.Body.Valid() {
		return 0, 0, fmt.Errorf("%w: %w: %s", ErrOracle, ErrUnsupportedBody, target.Body)
	}

	if to.Before(from) {
		return 0, 0, fmt.Errorf("%w: %w: %s > %s", ErrOracle, ErrInvalidWindow, from, to)
	}

	return julian.TimeToJD(from.UTC()), julian.TimeToJD(to.UTC()), nil
}

func (m *Meeus) stepDays() float64 {
	return m.step.Hours() / 24
}

// altitude is the geometric altitude of the body centre at the event
func (h Horizon) altitude(eq equatorial) float64 {
	alt := h.Degrees * degree

	// Only the standard horizon accounts for refraction; twilight depressions
	// and other offsets are geometric.
	if h.Degrees == 0 {
		alt -= horizonRefraction
	}

	if h.UpperLimb {
		alt -= eq.semidiameter
	}

	return alt
}

func apparentEquatorial(body observer.Body, jd float64) equatorial {
	jde := ephemerisDay(jd)

	if body == observer.BodySun {
		α, δ := solar.ApparentEquatorial(jde)

		return equatorial{
			ra:           α.Rad(),
			dec:          δ.Rad(),
			parallax:     sunParallax,
			semidiameter: sunSemidiameter,
		}
	}

	λ, β, Δ := moonposition.Position(jde)
	Δψ, Δε := nutation.Nutation(jde)
	ε := nutation.MeanObliquity(jde) + Δε
	sε, cε := math.Sincos(ε.Rad())
	α, δ := coord.EclToEq(λ+Δψ, β, sε, cε)

	return equatorial{
		ra:           α.Rad(),
		dec:          δ.Rad(),
		parallax:     parallax.Horizontal(Δ / base.AU).Rad(),
		semidiameter: math.Asin(moonRadiusKm / Δ),
	}
}

// horizontal returns azimuth, topocentric altitude and local hour angle
func horizontal(target observer.Target, jd float64) (az, alt, ha float64) {
	return horizontalFrom(target.Location, apparentEquatorial(target.Body, jd), jd)
}

func horizontalFrom(loc observer.Location, eq equatorial, jd float64) (az, alt, ha float64) {
	lst := sidereal.Apparent(jd).Rad() + loc.LongitudeRad()
	ha = lst - eq.ra

	sφ, cφ := math.Sincos(loc.LatitudeRad())
	sδ, cδ := math.Sincos(eq.dec)
	sH, cH := math.Sincos(ha)

	alt = math.Asin(sφ*sδ + cφ*cδ*cH)

	// parallax in altitude scales with the observer's distance from the
	// geocentre, in equatorial radii
	ρsφ, ρcφ := globe.Earth76.ParallaxConstants(unit.AngleFromDeg(loc.Latitude), loc.Elevation)
	alt -= eq.parallax * math.Hypot(ρsφ, ρcφ) * math.Cos(alt)

	az = normalize(math.Atan2(-cδ*sH, sδ*cφ-cδ*sφ*cH))

	return az, alt, ha
}

// ephemerisDay converts a UT Julian day to dynamical time
func ephemerisDay(jd float64) float64 {
	return jd + deltaT(jd)/86400
}

// deltaT approximates TT-UT in seconds (Espenak and Meeus, 2005-2050)
func deltaT(jd float64) float64 {
	y := 2000 + (jd-base.J2000)/365.25
	t := y - 2000

	return 62.92 + 0.32217*t + 0.005589*t*t
}

func jdToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC().Round(time.Second)
}

// normalize maps an angle to [0, 2π)
func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}

	return a
}

// wrapPi maps an angle to [-π, π)
func wrapPi(a float64) float64 {
	return normalize(a+math.Pi) - math.Pi
}
