package orb

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observer"
)

var (
	// ErrConfiguration is returned for unsupported bodies, invalid locations
	// and Moon-only queries made against the Sun
	ErrConfiguration = observer.ErrConfiguration
	// ErrNoEventFound is returned when a search window holds no qualifying event
	ErrNoEventFound = cache.ErrNoEventFound
	// ErrOracle wraps every failure raised by the ephemeris
	ErrOracle = ephemeris.ErrOracle

	// ErrMoonOnly is returned by Moon when the observer watches the Sun
	ErrMoonOnly = fmt.Errorf("%w: phase and light are only defined for the moon", observer.ErrConfiguration)
	// ErrInvalidOffset is returned for NaN or infinite offsets
	ErrInvalidOffset = fmt.Errorf("%w: offset must be a finite number", observer.ErrConfiguration)
	// ErrUnknownEvent is returned by ParseEvent for names it does not know
	ErrUnknownEvent = fmt.Errorf("%w: unknown event", observer.ErrConfiguration)
	// ErrObserverRequired is returned by New without an observer
	ErrObserverRequired = errors.New("observer is required")
	// ErrOracleRequired is returned by New without an oracle
	ErrOracleRequired = errors.New("oracle is required")
)

// oracleError makes sure err carries ErrOracle
func oracleError(err error) error {
	if err == nil || errors.Is(err, ErrOracle) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrOracle, err)
}

// status maps an error to the label used in query metrics
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoEventFound):
		return "not_found"
	case errors.Is(err, ErrConfiguration):
		return "invalid"
	default:
		return "error"
	}
}
