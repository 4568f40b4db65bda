// Package cache keeps pre-computed sequences of future event times and
// answers "next occurrence after T" with as few ephemeris searches as
// possible.
package cache

import "time"

// Config bounds every entry of a Store
type Config struct {
	// MaxSize is the most timestamps an entry may hold before it is discarded
	MaxSize int `yaml:"maxSize" default:"2000"`
	// PrefillHorizon is how far ahead each fetch looks
	PrefillHorizon time.Duration `yaml:"prefillHorizon" default:"8760h"`
	// MergeTolerance treats events closer than this as the same occurrence
	MergeTolerance time.Duration `yaml:"mergeTolerance" default:"1m"`
}

// DefaultConfig returns the defaults used when no configuration is given
func DefaultConfig() Config {
	return Config{
		MaxSize:        2000,
		PrefillHorizon: 365 * 24 * time.Hour,
		MergeTolerance: time.Minute,
	}
}

// Validate checks the cache configuration
func (c *Config) Validate() error {
	if c.MaxSize <= 0 {
		return ErrInvalidMaxSize
	}

	if c.PrefillHorizon <= 0 {
		return ErrInvalidHorizon
	}

	if c.MergeTolerance < 0 {
		return ErrInvalidTolerance
	}

	return nil
}
