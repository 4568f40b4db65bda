// Package scheduler keeps the event caches warm on a cron schedule and, when
// a publisher is configured, announces the upcoming events
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ethpandaops/orb/pkg/orb"
)

var (
	// ErrInvalidTimeout is returned when the warm-up timeout is not positive
	ErrInvalidTimeout = errors.New("warm-up timeout must be positive")
	// ErrInvalidLease is returned when the renew interval does not fit in the lease
	ErrInvalidLease = errors.New("renew interval must be positive and shorter than the lease TTL")
	// ErrInvalidOffset is returned for a non-finite degree offset
	ErrInvalidOffset = errors.New("degree offsets must be finite")
)

// Config defines scheduler configuration
type Config struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Warmup  string `yaml:"warmup" default:"@every 1h"`
	// Events are warmed for every observer; empty means all of them
	Events []string `yaml:"events"`
	// DegreeOffsets are warmed for rise and set; empty means the horizon only
	DegreeOffsets []float64     `yaml:"degreeOffsets"`
	UseCenter     bool          `yaml:"useCenter" default:"true"`
	Timeout       time.Duration `yaml:"timeout" default:"1m"`
	LeaseTTL      time.Duration `yaml:"leaseTTL" default:"10s"`
	RenewInterval time.Duration `yaml:"renewInterval" default:"3s"`
}

// Validate checks if the scheduler configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if _, err := cron.ParseStandard(c.Warmup); err != nil {
		return fmt.Errorf("invalid warmup schedule %q: %w", c.Warmup, err)
	}

	if _, err := c.events(); err != nil {
		return err
	}

	for _, offset := range c.DegreeOffsets {
		if math.IsNaN(offset) || math.IsInf(offset, 0) {
			return ErrInvalidOffset
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RenewInterval <= 0 || c.RenewInterval >= c.LeaseTTL {
		return ErrInvalidLease
	}

	return nil
}

func (c *Config) events() ([]orb.Event, error) {
	if len(c.Events) == 0 {
		return orb.Events(), nil
	}

	out := make([]orb.Event, 0, len(c.Events))
	for _, name := range c.Events {
		event, err := orb.ParseEvent(name)
		if err != nil {
			return nil, err
		}

		out = append(out, event)
	}

	return out, nil
}

func (c *Config) offsets() []float64 {
	if len(c.DegreeOffsets) == 0 {
		return []float64{0}
	}

	return c.DegreeOffsets
}
