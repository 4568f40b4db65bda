package ephemeris

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidSearchStep is returned when the search step is out of range
	ErrInvalidSearchStep = errors.New("search step must be between 1m and 2h")
)

// Config selects how the Meeus oracle searches for events
type Config struct {
	// SearchStep is the sampling interval used to bracket events
	SearchStep time.Duration `yaml:"searchStep" default:"30m"`
}

// Validate checks the ephemeris configuration
func (c *Config) Validate() error {
	if c.SearchStep < time.Minute || c.SearchStep > 2*time.Hour {
		return ErrInvalidSearchStep
	}

	return nil
}

// Build creates the Meeus oracle described by the configuration
func (c *Config) Build(log logrus.FieldLogger) *Meeus {
	return NewMeeus(log, WithSearchStep(c.SearchStep))
}
