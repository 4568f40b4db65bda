package observer

import (
	"errors"
	"fmt"
)

var (
	// ErrObserverNameRequired is returned when an observer entry has no name
	ErrObserverNameRequired = errors.New("observer name is required")
)

// Config describes one observer in the service configuration
type Config struct {
	Name      string  `yaml:"name"`
	Body      string  `yaml:"body" default:"sun"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation"`
}

// Validate checks the observer configuration
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrObserverNameRequired
	}

	if _, err := ParseBody(c.Body); err != nil {
		return fmt.Errorf("observer %s: %w", c.Name, err)
	}

	if err := c.Location().Validate(); err != nil {
		return fmt.Errorf("observer %s: %w", c.Name, err)
	}

	return nil
}

// Location returns the configured coordinates
func (c *Config) Location() Location {
	return Location{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Elevation: c.Elevation,
	}
}

// Build creates the Observer described by the configuration
func (c *Config) Build() (*Observer, error) {
	body, err := ParseBody(c.Body)
	if err != nil {
		return nil, err
	}

	return New(c.Name, body, c.Location())
}
