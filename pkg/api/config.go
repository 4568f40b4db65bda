// Package api provides a REST API exposing the event queries of every
// configured observer
package api

import (
	"errors"
	"time"
)

var (
	// ErrAPIAddrRequired is returned when API is enabled but no address is configured
	ErrAPIAddrRequired = errors.New("api address is required when API is enabled")
	// ErrInvalidRequestTimeout is returned for a non-positive request timeout
	ErrInvalidRequestTimeout = errors.New("api request timeout must be positive")
)

// Config represents API service configuration
type Config struct {
	Enabled        bool          `yaml:"enabled" default:"true"`
	Addr           string        `yaml:"addr" default:":8080"`
	AllowOrigins   []string      `yaml:"allowOrigins"`
	RequestTimeout time.Duration `yaml:"requestTimeout" default:"30s"`
}

// Validate validates the API configuration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Addr == "" {
		return ErrAPIAddrRequired
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	return nil
}

func (c *Config) origins() []string {
	if len(c.AllowOrigins) == 0 {
		return []string{"*"}
	}

	return c.AllowOrigins
}
