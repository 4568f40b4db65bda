package orb

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observer"
)

//nolint:gochecknoglobals // test fixtures
var (
	noonEpoch     = time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	midnightEpoch = time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	riseEpoch     = time.Date(2024, 3, 1, 5, 30, 0, 0, time.UTC)
	setEpoch      = time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	day           = 24 * time.Hour
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	return log
}

func testObserver(t *testing.T, body observer.Body) *observer.Observer {
	t.Helper()

	obs, err := observer.New("berlin", body, observer.Location{Latitude: 52.52, Longitude: 13.405, Elevation: 34})
	require.NoError(t, err)

	return obs
}

func dailyOracle() *ephemeris.MockOracle {
	m := ephemeris.NewMockOracle()
	m.TransitsFunc = ephemeris.Periodic(noonEpoch, day)
	m.AntitransitsFunc = ephemeris.Periodic(midnightEpoch, day)
	m.RisingsFunc = ephemeris.PeriodicEvents(riseEpoch, day)
	m.SettingsFunc = ephemeris.PeriodicEvents(setEpoch, day)

	return m
}

func testCacheConfig() cache.Config {
	return cache.Config{
		MaxSize:        100,
		PrefillHorizon: 30 * day,
		MergeTolerance: time.Minute,
	}
}

func newTestOrb(t *testing.T, body observer.Body, oracle ephemeris.Oracle, opts ...Option) *Orb {
	t.Helper()

	o, err := New(testObserver(t, body), oracle, testCacheConfig(), testLogger(), opts...)
	require.NoError(t, err)

	return o
}

func TestNew_Validation(t *testing.T) {
	obs := testObserver(t, observer.BodySun)
	oracle := ephemeris.NewMockOracle()

	_, err := New(nil, oracle, testCacheConfig(), testLogger())
	assert.ErrorIs(t, err, ErrObserverRequired)

	_, err = New(obs, nil, testCacheConfig(), testLogger())
	assert.ErrorIs(t, err, ErrOracleRequired)

	_, err = New(obs, oracle, cache.Config{}, testLogger())
	assert.ErrorIs(t, err, cache.ErrInvalidMaxSize)
}

func TestOrb_NextEvents(t *testing.T) {
	o := newTestOrb(t, observer.BodySun, dailyOracle())
	ctx := context.Background()
	dt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		call func(time.Time) (time.Time, error)
		want time.Time
	}{
		{
			name: "noon",
			call: func(dt time.Time) (time.Time, error) { return o.Noon(ctx, 0, dt) },
			want: time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC),
		},
		{
			name: "midnight",
			call: func(dt time.Time) (time.Time, error) { return o.Midnight(ctx, 0, dt) },
			want: time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "rise",
			call: func(dt time.Time) (time.Time, error) { return o.Rise(ctx, 0, 0, true, dt) },
			want: time.Date(2024, 3, 11, 5, 30, 0, 0, time.UTC),
		},
		{
			name: "set",
			call: func(dt time.Time) (time.Time, error) { return o.Set(ctx, 0, 0, true, dt) },
			want: time.Date(2024, 3, 10, 16, 30, 0, 0, time.UTC),
		},
		{
			name: "noon with minute offset",
			call: func(dt time.Time) (time.Time, error) { return o.NoonCached(ctx, -30, dt) },
			want: time.Date(2024, 3, 11, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "set with fractional minute offset",
			call: func(dt time.Time) (time.Time, error) { return o.SetCached(ctx, 0, 1.5, true, dt) },
			want: time.Date(2024, 3, 10, 16, 31, 30, 0, time.UTC),
		},
		{
			name: "reference time in another zone",
			call: func(time.Time) (time.Time, error) {
				return o.MidnightCached(ctx, 0, time.Date(2024, 3, 11, 0, 30, 0, 0, time.FixedZone("CET", 3600)))
			},
			want: time.Date(2024, 3, 11, 23, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(dt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestOrb_StrictlyAfterReference(t *testing.T) {
	o := newTestOrb(t, observer.BodySun, dailyOracle())
	ctx := context.Background()

	got, err := o.Noon(ctx, 0, noonEpoch)
	require.NoError(t, err)
	assert.Equal(t, noonEpoch.Add(day), got)

	got, err = o.NoonCached(ctx, 0, noonEpoch)
	require.NoError(t, err)
	assert.Equal(t, noonEpoch.Add(day), got)
}

func TestOrb_CachedAndUncachedAgree(t *testing.T) {
	oracle := dailyOracle()
	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()

	type pair struct {
		event   string
		cached  func(time.Time) (time.Time, error)
		regular func(time.Time) (time.Time, error)
	}

	pairs := []pair{
		{
			event:   "noon",
			cached:  func(dt time.Time) (time.Time, error) { return o.NoonCached(ctx, 0, dt) },
			regular: func(dt time.Time) (time.Time, error) { return o.Noon(ctx, 0, dt) },
		},
		{
			event:   "midnight",
			cached:  func(dt time.Time) (time.Time, error) { return o.MidnightCached(ctx, 0, dt) },
			regular: func(dt time.Time) (time.Time, error) { return o.Midnight(ctx, 0, dt) },
		},
		{
			event:   "rise",
			cached:  func(dt time.Time) (time.Time, error) { return o.RiseCached(ctx, 0, 0, true, dt) },
			regular: func(dt time.Time) (time.Time, error) { return o.Rise(ctx, 0, 0, true, dt) },
		},
		{
			event:   "set",
			cached:  func(dt time.Time) (time.Time, error) { return o.SetCached(ctx, 0, 0, true, dt) },
			regular: func(dt time.Time) (time.Time, error) { return o.Set(ctx, 0, 0, true, dt) },
		},
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, p := range pairs {
		t.Run(p.event, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				dt := start.Add(time.Duration(i) * time.Hour)

				cached, err := p.cached(dt)
				require.NoError(t, err)

				regular, err := p.regular(dt)
				require.NoError(t, err)

				assert.Equal(t, regular, cached, "at %s", dt)
			}
		})
	}

	// 200 hours fit in one prefill, so each cached key hit the oracle once
	// while every uncached query ran its own search
	assert.Equal(t, 201, oracle.CallCount("Transits"))
	assert.Equal(t, 201, oracle.CallCount("Antitransits"))
	assert.Equal(t, 201, oracle.CallCount("Risings"))
	assert.Equal(t, 201, oracle.CallCount("Settings"))
}

func TestOrb_UncachedWindow(t *testing.T) {
	oracle := dailyOracle()
	o := newTestOrb(t, observer.BodySun, oracle)
	dt := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	_, err := o.Noon(context.Background(), 0, dt)
	require.NoError(t, err)

	call, ok := oracle.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Transits", call.Method)
	assert.Equal(t, dt, call.From)
	assert.Equal(t, dt.Add(48*time.Hour), call.To)
	assert.Equal(t, observer.BodySun, call.Target.Body)
}

func TestOrb_HorizonIsForwarded(t *testing.T) {
	oracle := dailyOracle()
	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()
	dt := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	_, err := o.RiseCached(ctx, 0, 0, false, dt)
	require.NoError(t, err)

	call, ok := oracle.LastCall()
	require.True(t, ok)
	assert.Equal(t, ephemeris.Horizon{Degrees: 0, UpperLimb: true}, call.Horizon)

	_, err = o.SetCached(ctx, 0.5, 0, true, dt)
	require.NoError(t, err)

	call, ok = oracle.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Settings", call.Method)
	assert.Equal(t, ephemeris.Horizon{Degrees: 0.5}, call.Horizon)
}

func TestOrb_CacheIsPartitionedByOffset(t *testing.T) {
	oracle := dailyOracle()
	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()
	dt := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := o.RiseCached(ctx, 0, 0, true, dt)
		require.NoError(t, err)
		_, err = o.RiseCached(ctx, -6, 0, true, dt)
		require.NoError(t, err)
		_, err = o.RiseCached(ctx, -6, 0, false, dt)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, oracle.CallCount("Risings"))
	assert.Len(t, o.Cache().Keys(), 3)
}

func TestOrb_CacheOverflowRefetches(t *testing.T) {
	oracle := dailyOracle()
	o := newTestOrb(t, observer.BodySun, oracle)
	key := cache.NewKey(cache.KindTransit, 0, false)

	maxSize := o.Cache().Config().MaxSize
	synthetic := make([]time.Time, 0, maxSize+1)
	for i := 0; i <= maxSize; i++ {
		synthetic = append(synthetic, noonEpoch.Add(time.Duration(i)*time.Hour))
	}
	o.Cache().Seed(key, synthetic)

	got, err := o.NoonCached(context.Background(), 0, noonEpoch)
	require.NoError(t, err)

	assert.Equal(t, noonEpoch.Add(day), got)
	assert.Equal(t, 1, oracle.CallCount("Transits"))

	stats := o.Cache().Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, uint64(1), stats[0].Resets)
}

func TestOrb_NoEventFound(t *testing.T) {
	oracle := dailyOracle()
	oracle.RisingsFunc = func(context.Context, observer.Target, time.Time, time.Time, ephemeris.Horizon) ([]ephemeris.Event, error) {
		// the body stays below the horizon: only closest approaches
		return []ephemeris.Event{{Time: noonEpoch.Add(10 * day), Crossed: false}}, nil
	}

	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()
	dt := noonEpoch.Add(9 * day)

	_, err := o.Rise(ctx, 0, 0, true, dt)
	assert.ErrorIs(t, err, ErrNoEventFound)

	_, err = o.RiseCached(ctx, 0, 0, true, dt)
	assert.ErrorIs(t, err, ErrNoEventFound)
}

func TestOrb_OracleErrors(t *testing.T) {
	errDown := errors.New("ephemeris unavailable")

	oracle := dailyOracle()
	oracle.TransitsFunc = func(context.Context, observer.Target, time.Time, time.Time) ([]time.Time, error) {
		return nil, errDown
	}
	oracle.PositionFunc = func(context.Context, observer.Target, time.Time) (ephemeris.Position, error) {
		return ephemeris.Position{}, errDown
	}

	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()

	_, err := o.Noon(ctx, 0, noonEpoch)
	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, errDown)

	_, err = o.NoonCached(ctx, 0, noonEpoch)
	assert.ErrorIs(t, err, ErrOracle)

	_, err = o.Pos(ctx, 0, true, noonEpoch)
	assert.ErrorIs(t, err, ErrOracle)
}

func TestOrb_InvalidOffsets(t *testing.T) {
	o := newTestOrb(t, observer.BodySun, dailyOracle())
	ctx := context.Background()

	_, err := o.Noon(ctx, math.NaN(), noonEpoch)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = o.RiseCached(ctx, math.Inf(-1), 0, true, noonEpoch)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = o.Pos(ctx, math.NaN(), false, noonEpoch)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = o.Lookup(ctx, EventUnknown, Request{At: noonEpoch})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestOrb_ZeroReferenceUsesClock(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	o := newTestOrb(t, observer.BodySun, dailyOracle(), WithClock(func() time.Time { return now }))

	got, err := o.NoonCached(context.Background(), 0, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 8, 11, 0, 0, 0, time.UTC), got)
}

func TestOrb_UnreachableOffsetResolvesToExtremum(t *testing.T) {
	oracle := dailyOracle()

	// the deepest the body gets is 10 degrees below the horizon
	oracle.PositionFunc = func(_ context.Context, _ observer.Target, at time.Time) (ephemeris.Position, error) {
		return ephemeris.Position{Azimuth: math.Pi, Altitude: -10 * math.Pi / 180}, nil
	}

	oracle.RisingsFunc = func(_ context.Context, _ observer.Target, _, _ time.Time, h ephemeris.Horizon) ([]ephemeris.Event, error) {
		if h.Degrees < -10 {
			return nil, nil
		}

		return []ephemeris.Event{{Time: riseEpoch, Crossed: true}}, nil
	}

	o := newTestOrb(t, observer.BodySun, oracle)
	dt := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	antitransit := time.Date(2024, 6, 20, 23, 0, 0, 0, time.UTC)

	got, err := o.Rise(context.Background(), -18, 0, true, dt)
	require.NoError(t, err)
	assert.Equal(t, antitransit, got)

	call, ok := oracle.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Position", call.Method)
	assert.Equal(t, antitransit, call.From)
	assert.Equal(t, 1, oracle.CallCount("Antitransits"))
	assert.Zero(t, oracle.CallCount("Risings"))

	got, err = o.Rise(context.Background(), -18, 30, true, dt)
	require.NoError(t, err)
	assert.Equal(t, antitransit.Add(30*time.Minute), got)

	// the cached path keys on the requested offset and does not clamp
	_, err = o.RiseCached(context.Background(), -18, 0, true, dt)
	assert.ErrorIs(t, err, ErrNoEventFound)
}

func TestOrb_ReachableOffsetIsKept(t *testing.T) {
	oracle := dailyOracle()
	oracle.PositionFunc = func(context.Context, observer.Target, time.Time) (ephemeris.Position, error) {
		return ephemeris.Position{Altitude: 60 * math.Pi / 180}, nil
	}

	o := newTestOrb(t, observer.BodySun, oracle)

	_, err := o.Set(context.Background(), 6, 0, true, noonEpoch)
	require.NoError(t, err)

	call, ok := oracle.LastCall()
	require.True(t, ok)
	assert.Equal(t, "Settings", call.Method)
	assert.InDelta(t, 6, call.Horizon.Degrees, 1e-12)
	assert.Equal(t, 1, oracle.CallCount("Transits"))
}

func TestOrb_Pos(t *testing.T) {
	oracle := dailyOracle()

	var asked time.Time
	oracle.PositionFunc = func(_ context.Context, _ observer.Target, at time.Time) (ephemeris.Position, error) {
		asked = at
		return ephemeris.Position{Azimuth: math.Pi, Altitude: math.Pi / 4}, nil
	}

	o := newTestOrb(t, observer.BodySun, oracle)
	ctx := context.Background()

	rad, err := o.Pos(ctx, 0, false, noonEpoch)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, rad.Azimuth, 1e-12)
	assert.InDelta(t, math.Pi/4, rad.Altitude, 1e-12)

	deg, err := o.Pos(ctx, 90, true, noonEpoch)
	require.NoError(t, err)
	assert.InDelta(t, 180, deg.Azimuth, 1e-9)
	assert.InDelta(t, 45, deg.Altitude, 1e-9)
	assert.Equal(t, noonEpoch.Add(90*time.Minute), asked)

	// positions are never cached
	assert.Equal(t, 2, oracle.CallCount("Position"))
	assert.Empty(t, o.Cache().Keys())
}

func TestOrb_MoonCapability(t *testing.T) {
	sun := newTestOrb(t, observer.BodySun, dailyOracle())

	_, err := sun.Moon()
	assert.ErrorIs(t, err, ErrMoonOnly)
	assert.ErrorIs(t, err, ErrConfiguration)

	moon := newTestOrb(t, observer.BodyMoon, dailyOracle())

	lunar, err := moon.Moon()
	require.NoError(t, err)
	assert.NotNil(t, lunar)
}

func TestLunar_PhaseAndLight(t *testing.T) {
	tests := []struct {
		angle     float64
		wantPhase int
		wantLight int
	}{
		{angle: 0, wantPhase: 0, wantLight: 0},
		{angle: 45, wantPhase: 1, wantLight: 15},
		{angle: 90, wantPhase: 2, wantLight: 50},
		{angle: 180, wantPhase: 4, wantLight: 100},
		{angle: 270, wantPhase: 6, wantLight: 50},
		{angle: 350, wantPhase: 0, wantLight: 1},
		{angle: 359.99, wantPhase: 0, wantLight: 0},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			oracle := dailyOracle()
			oracle.MoonPhaseAngleFunc = func(context.Context, time.Time) (float64, error) {
				return tt.angle, nil
			}

			lunar, err := newTestOrb(t, observer.BodyMoon, oracle).Moon()
			require.NoError(t, err)

			phase, err := lunar.Phase(context.Background(), 0, noonEpoch)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhase, phase, "phase at %v", tt.angle)

			light, err := lunar.Light(context.Background(), 0, noonEpoch)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLight, light, "light at %v", tt.angle)
		})
	}
}

func TestLunar_OffsetShiftsInstant(t *testing.T) {
	oracle := dailyOracle()

	var asked time.Time
	oracle.MoonPhaseAngleFunc = func(_ context.Context, at time.Time) (float64, error) {
		asked = at
		return 10, nil
	}

	lunar, err := newTestOrb(t, observer.BodyMoon, oracle).Moon()
	require.NoError(t, err)

	_, err = lunar.Phase(context.Background(), -60, noonEpoch)
	require.NoError(t, err)
	assert.Equal(t, noonEpoch.Add(-time.Hour), asked)
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in      string
		want    Event
		wantErr bool
	}{
		{in: "noon", want: EventNoon},
		{in: "Transit", want: EventNoon},
		{in: "midnight", want: EventMidnight},
		{in: "sunrise", want: EventRise},
		{in: " set ", want: EventSet},
		{in: "zenith", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEvent(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Event {
	t.Helper()

	e, err := ParseEvent(s)
	require.NoError(t, err)

	return e
}
