// Package observer describes who is looking at the sky: a fixed location on
// the Earth and the celestial body being followed.
package observer

import (
	"fmt"
	"math"
	"strings"
)

// Body identifies a supported celestial body
type Body int

const (
	// BodyUnknown is the zero value and is never valid
	BodyUnknown Body = iota
	// BodySun is the Sun
	BodySun
	// BodyMoon is the Moon
	BodyMoon
)

// String returns the lowercase body name
func (b Body) String() string {
	switch b {
	case BodySun:
		return "sun"
	case BodyMoon:
		return "moon"
	default:
		return "unknown"
	}
}

// Valid reports whether b is one of the supported bodies
func (b Body) Valid() bool {
	return b == BodySun || b == BodyMoon
}

// IsMoon reports whether lunar phase and illumination apply to b
func (b Body) IsMoon() bool {
	return b == BodyMoon
}

// ParseBody maps a body name to a Body
func ParseBody(name string) (Body, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sun":
		return BodySun, nil
	case "moon":
		return BodyMoon, nil
	default:
		return BodyUnknown, fmt.Errorf("%w: unknown celestial body %q", ErrConfiguration, name)
	}
}

// Location is a point on the Earth's surface
type Location struct {
	// Latitude in degrees, north positive
	Latitude float64 `json:"latitude"`
	// Longitude in degrees, east positive
	Longitude float64 `json:"longitude"`
	// Elevation in meters above sea level
	Elevation float64 `json:"elevation"`
}

// Validate checks that the coordinates are on the globe
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidLocation, l.Latitude)
	}

	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidLocation, l.Longitude)
	}

	return nil
}

// LatitudeRad returns the latitude in radians
func (l Location) LatitudeRad() float64 {
	return l.Latitude * math.Pi / 180
}

// LongitudeRad returns the longitude in radians, east positive
func (l Location) LongitudeRad() float64 {
	return l.Longitude * math.Pi / 180
}

// Target is the (location, body) pair handed to the ephemeris
type Target struct {
	Location Location
	Body     Body
}

// String renders the target for logs
func (t Target) String() string {
	return fmt.Sprintf("%s@%.4f,%.4f", t.Body, t.Location.Latitude, t.Location.Longitude)
}

// Observer is an immutable observer context
type Observer struct {
	name     string
	location Location
	body     Body
}

// New creates an observer for body at location
func New(name string, body Body, location Location) (*Observer, error) {
	if !body.Valid() {
		return nil, fmt.Errorf("%w: unknown celestial body %d", ErrConfiguration, body)
	}

	if err := location.Validate(); err != nil {
		return nil, err
	}

	if name == "" {
		name = body.String()
	}

	return &Observer{
		name:     name,
		location: location,
		body:     body,
	}, nil
}

// Name returns the observer name used in logs and metrics
func (o *Observer) Name() string {
	return o.name
}

// Body returns the observed body
func (o *Observer) Body() Body {
	return o.body
}

// Location returns the observer location
func (o *Observer) Location() Location {
	return o.location
}

// Target returns the pair passed to ephemeris computations
func (o *Observer) Target() Target {
	return Target{Location: o.location, Body: o.body}
}
