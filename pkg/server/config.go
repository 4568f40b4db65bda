// Package server wires the orbs, the API, the scheduler and the metrics
// endpoints into one process
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"

	"github.com/ethpandaops/orb/pkg/api"
	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observer"
	"github.com/ethpandaops/orb/pkg/redis"
	"github.com/ethpandaops/orb/pkg/scheduler"
)

// Define static errors
var (
	ErrObserversRequired = errors.New("at least one observer is required")
)

// Config holds server configuration
type Config struct {
	// LoggingLevel is the logging level to use.
	LoggingLevel string `yaml:"logging" default:"info"`
	// MetricsAddr is the address to listen on for metrics.
	MetricsAddr string `yaml:"metricsAddr" default:":9090"`
	// HealthCheckAddr is the address to listen on for healthcheck.
	HealthCheckAddr *string `yaml:"healthCheckAddr"`
	// PProfAddr is the address to listen on for pprof.
	PProfAddr *string `yaml:"pprofAddr"`
	// ShutdownTimeout is the timeout for shutting down the server.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"10s"`

	Observers []observer.Config `yaml:"observers"`
	Cache     cache.Config      `yaml:"cache"`
	Ephemeris ephemeris.Config  `yaml:"ephemeris"`
	API       api.Config        `yaml:"api"`
	Scheduler scheduler.Config  `yaml:"scheduler"`
	// Redis enables publishing upcoming events; optional.
	Redis *redis.Config `yaml:"redis"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Observers) == 0 {
		return ErrObserversRequired
	}

	for i := range c.Observers {
		if err := defaults.Set(&c.Observers[i]); err != nil {
			return fmt.Errorf("failed to apply observer defaults: %w", err)
		}

		if err := c.Observers[i].Validate(); err != nil {
			return fmt.Errorf("invalid observer configuration: %w", err)
		}
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("invalid cache configuration: %w", err)
	}

	if err := c.Ephemeris.Validate(); err != nil {
		return fmt.Errorf("invalid ephemeris configuration: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("invalid api configuration: %w", err)
	}

	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("invalid scheduler configuration: %w", err)
	}

	if c.Redis != nil {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis configuration: %w", err)
		}
	}

	return nil
}
