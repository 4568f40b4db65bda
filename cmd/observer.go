package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/observer"
	"github.com/ethpandaops/orb/pkg/orb"
)

// locationFlags are the observer flags shared by the one-shot commands
type locationFlags struct {
	latitude   float64
	longitude  float64
	elevation  float64
	searchStep time.Duration
}

// bind registers the flags on cmd; the defaults place the observer in Berlin
func (f *locationFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.latitude, "lat", 52.52, "observer latitude in degrees, north positive")
	cmd.Flags().Float64Var(&f.longitude, "lon", 13.405, "observer longitude in degrees, east positive")
	cmd.Flags().Float64Var(&f.elevation, "elev", 34, "observer elevation in meters")
	cmd.Flags().DurationVar(&f.searchStep, "search-step", 30*time.Minute, "ephemeris search step")
}

func (f *locationFlags) location() observer.Location {
	return observer.Location{
		Latitude:  f.latitude,
		Longitude: f.longitude,
		Elevation: f.elevation,
	}
}

// newOrb builds an orb on a Meeus oracle for the flagged location
func (f *locationFlags) newOrb(name string, body observer.Body, cfg cache.Config) (*orb.Orb, error) {
	obs, err := observer.New(name, body, f.location())
	if err != nil {
		return nil, err
	}

	search := &ephemeris.Config{SearchStep: f.searchStep}
	if err := search.Validate(); err != nil {
		return nil, fmt.Errorf("--search-step %s: %w", f.searchStep, err)
	}

	return orb.New(obs, search.Build(logger), cfg, logger)
}

// parseTime accepts RFC3339; an empty value means now
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, value)
}
