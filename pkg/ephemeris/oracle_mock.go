package ephemeris

import (
	"context"
	"sync"
	"time"

	"github.com/ethpandaops/orb/pkg/observer"
)

// MockOracle is a mock implementation of Oracle for testing
type MockOracle struct {
	mu sync.Mutex

	// Control behavior
	TransitsFunc       func(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error)
	AntitransitsFunc   func(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error)
	RisingsFunc        func(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error)
	SettingsFunc       func(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error)
	PositionFunc       func(ctx context.Context, target observer.Target, t time.Time) (Position, error)
	MoonPhaseAngleFunc func(ctx context.Context, t time.Time) (float64, error)

	// Track calls for assertions
	Calls []OracleCall
}

// OracleCall records one call made to the mock
type OracleCall struct {
	Method  string
	Target  observer.Target
	From    time.Time
	To      time.Time
	Horizon Horizon
}

// NewMockOracle creates a new mock oracle
func NewMockOracle() *MockOracle {
	return &MockOracle{
		Calls: make([]OracleCall, 0),
	}
}

// CallCount returns how many times method was called
func (m *MockOracle) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}

	return n
}

// LastCall returns the most recent call, or false if none were made
func (m *MockOracle) LastCall() (OracleCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return OracleCall{}, false
	}

	return m.Calls[len(m.Calls)-1], true
}

// Reset clears recorded calls
func (m *MockOracle) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = m.Calls[:0]
}

func (m *MockOracle) track(call OracleCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, call)
}

// Name implements Oracle
func (m *MockOracle) Name() string {
	return "mock"
}

// Transits implements Oracle
func (m *MockOracle) Transits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	m.track(OracleCall{Method: "Transits", Target: target, From: from, To: to})

	if m.TransitsFunc != nil {
		return m.TransitsFunc(ctx, target, from, to)
	}

	return nil, nil
}

// Antitransits implements Oracle
func (m *MockOracle) Antitransits(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	m.track(OracleCall{Method: "Antitransits", Target: target, From: from, To: to})

	if m.AntitransitsFunc != nil {
		return m.AntitransitsFunc(ctx, target, from, to)
	}

	return nil, nil
}

// Risings implements Oracle
func (m *MockOracle) Risings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	m.track(OracleCall{Method: "Risings", Target: target, From: from, To: to, Horizon: horizon})

	if m.RisingsFunc != nil {
		return m.RisingsFunc(ctx, target, from, to, horizon)
	}

	return nil, nil
}

// Settings implements Oracle
func (m *MockOracle) Settings(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	m.track(OracleCall{Method: "Settings", Target: target, From: from, To: to, Horizon: horizon})

	if m.SettingsFunc != nil {
		return m.SettingsFunc(ctx, target, from, to, horizon)
	}

	return nil, nil
}

// Position implements Oracle
func (m *MockOracle) Position(ctx context.Context, target observer.Target, t time.Time) (Position, error) {
	m.track(OracleCall{Method: "Position", Target: target, From: t, To: t})

	if m.PositionFunc != nil {
		return m.PositionFunc(ctx, target, t)
	}

	return Position{}, nil
}

// MoonPhaseAngle implements Oracle
func (m *MockOracle) MoonPhaseAngle(ctx context.Context, t time.Time) (float64, error) {
	m.track(OracleCall{Method: "MoonPhaseAngle", From: t, To: t})

	if m.MoonPhaseAngleFunc != nil {
		return m.MoonPhaseAngleFunc(ctx, t)
	}

	return 0, nil
}

// Periodic returns a search function yielding every occurrence of an event
// that repeats each period starting at epoch. It is a convenient stand-in for
// transits and antitransits in tests.
func Periodic(epoch time.Time, period time.Duration) func(ctx context.Context, target observer.Target, from, to time.Time) ([]time.Time, error) {
	return func(_ context.Context, _ observer.Target, from, to time.Time) ([]time.Time, error) {
		var out []time.Time

		n := from.Sub(epoch) / period
		t := epoch.Add(n * period)
		for t.Before(from) {
			t = t.Add(period)
		}

		for ; !t.After(to); t = t.Add(period) {
			out = append(out, t)
		}

		return out, nil
	}
}

// PeriodicEvents is Periodic for rising and setting searches
func PeriodicEvents(epoch time.Time, period time.Duration) func(ctx context.Context, target observer.Target, from, to time.Time, horizon Horizon) ([]Event, error) {
	periodic := Periodic(epoch, period)

	return func(ctx context.Context, target observer.Target, from, to time.Time, _ Horizon) ([]Event, error) {
		times, err := periodic(ctx, target, from, to)
		if err != nil {
			return nil, err
		}

		out := make([]Event, 0, len(times))
		for _, t := range times {
			out = append(out, Event{Time: t, Crossed: true})
		}

		return out, nil
	}
}

var _ Oracle = (*MockOracle)(nil)
