package orb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observer"
)

func namedOrb(t *testing.T, name string) *Orb {
	t.Helper()

	obs, err := observer.New(name, observer.BodySun, observer.Location{Latitude: 10, Longitude: 20})
	require.NoError(t, err)

	o, err := New(obs, ephemeris.NewMockOracle(), testCacheConfig(), testLogger())
	require.NoError(t, err)

	return o
}

func TestRegistry(t *testing.T) {
	zurich := namedOrb(t, "zurich")
	berlin := namedOrb(t, "berlin")

	reg, err := NewRegistry(zurich, berlin)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"berlin", "zurich"}, reg.Names())
	assert.Equal(t, []*Orb{berlin, zurich}, reg.All())

	got, err := reg.Get("zurich")
	require.NoError(t, err)
	assert.Same(t, zurich, got)

	_, err = reg.Get("paris")
	assert.ErrorIs(t, err, ErrObserverNotFound)
}

func TestRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(namedOrb(t, "berlin"), namedOrb(t, "berlin"))
	assert.ErrorIs(t, err, ErrDuplicateObserver)
}
