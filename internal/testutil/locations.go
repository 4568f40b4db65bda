package testutil

import (
	"testing"

	"github.com/ethpandaops/orb/pkg/observer"
)

//nolint:gochecknoglobals // shared fixtures
var (
	// Berlin has ordinary days all year
	Berlin = observer.Location{Latitude: 52.52, Longitude: 13.405, Elevation: 34}
	// Tromso has midnight sun in June and polar night in December
	Tromso = observer.Location{Latitude: 69.6492, Longitude: 18.9553, Elevation: 10}
	// Quito sits on the equator
	Quito = observer.Location{Latitude: -0.1807, Longitude: -78.4678, Elevation: 2850}
)

// NewObserver builds an observer or fails the test
func NewObserver(t *testing.T, name string, body observer.Body, loc observer.Location) *observer.Observer {
	t.Helper()

	obs, err := observer.New(name, body, loc)
	if err != nil {
		t.Fatalf("failed to create observer %s: %v", name, err)
	}

	return obs
}
