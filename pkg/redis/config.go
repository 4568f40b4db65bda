// Package redis provides Redis client configuration
package redis

import (
	"errors"
	"fmt"
	"strings"

	r "github.com/redis/go-redis/v9"
)

// Define static errors
var (
	ErrURLRequired = errors.New("redis url is required")
)

// Config holds Redis client configuration
type Config struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix" default:"orb"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	if c.Prefix == "" {
		c.Prefix = "orb"
	}

	return nil
}

// PrefixKey joins parts with ':' behind the configured prefix
func (c *Config) PrefixKey(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.Prefix == "" {
		return key
	}

	return fmt.Sprintf("%s:%s", c.Prefix, key)
}

// New parses the configured URL and returns a connected client
func New(cfg *Config) (*r.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opt, err := r.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return r.NewClient(opt), nil
}
