package ephemeris

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/ethpandaops/orb/pkg/observer"
)

// ReferenceSunriseSunset returns sunrise and sunset on the UTC calendar date
// of day using the NOAA-style algorithm from go-sunrise. It is independent of
// the Meeus oracle and only used to cross-check it. ok is false when the Sun
// does not rise or set on that date.
func ReferenceSunriseSunset(loc observer.Location, day time.Time) (rise, set time.Time, ok bool) {
	day = day.UTC()

	rise, set = sunrise.SunriseSunset(loc.Latitude, loc.Longitude, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}

	return rise.UTC(), set.UTC(), true
}
