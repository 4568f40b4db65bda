package ephemeris

import (
	"context"
	"time"

	"github.com/ethpandaops/orb/pkg/observability"
	"github.com/ethpandaops/orb/pkg/observer"
)

// instrumented records call counts and latency for every Oracle method
type instrumented struct {
	next     Oracle
	observer string
}

// WithMetrics wraps an Oracle so each call is recorded against the observer name
func WithMetrics(next Oracle, observerName string) Oracle {
	return &instrumented{next: next, observer: observerName}
}

func (i *instrumented) record(method string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		observability.RecordError("ephemeris", method)
	}

	observability.RecordOracleCall(i.observer, method, status, time.Since(start).Seconds())
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Transits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	start := time.Now()
	out, err := i.next.Transits(ctx, target, from, to)
	i.record("transits", start, err)

	return out, err
}

func (i *instrumented) Antitransits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	start := time.Now()
	out, err := i.next.Antitransits(ctx, target, from, to)
	i.record("antitransits", start, err)

	return out, err
}

func (i *instrumented) Risings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	start := time.Now()
	out, err := i.next.Risings(ctx, target, from, to, horizon)
	i.record("risings", start, err)

	return out, err
}

func (i *instrumented) Settings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	start := time.Now()
	out, err := i.next.Settings(ctx, target, from, to, horizon)
	i.record("settings", start, err)

	return out, err
}

func (i *instrumented) Position(ctx context.Context, target observer.Target, t time.Time) (Position, error) {
	start := time.Now()
	out, err := i.next.Position(ctx, target, t)
	i.record("position", start, err)

	return out, err
}

func (i *instrumented) MoonPhaseAngle(ctx context.Context, t time.Time) (float64, error) {
	start := time.Now()
	out, err := i.next.MoonPhaseAngle(ctx, t)
	i.record("moon_phase_angle", start, err)

	return out, err
}
