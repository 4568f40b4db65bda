package benchmark

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/ephemeris"
	"github.com/ethpandaops/orb/pkg/orb"
)

// ReferenceFunc returns sunrise and sunset on the UTC date of day
type ReferenceFunc func(day time.Time) (rise, set time.Time, ok bool)

// Deviation summarises how far an orb drifts from a reference
type Deviation struct {
	Event   string
	Samples int
	Skipped int
	Max     time.Duration
	MaxAt   time.Time
	Mean    time.Duration
}

// Comparison holds the rise and set deviations
type Comparison struct {
	Days       int
	Deviations []Deviation
}

// Compare checks the upper-limb sunrise and sunset of o against reference for
// days consecutive UTC dates starting at start. Days without a reference
// event, or where the orb finds none, are skipped.
func Compare(ctx context.Context, o *orb.Orb, reference ReferenceFunc, start time.Time, days int, log logrus.FieldLogger) (*Comparison, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidRange, days)
	}

	log = log.WithField("component", "compare")
	start = start.UTC().Truncate(24 * time.Hour)

	type acc struct {
		dev   Deviation
		total time.Duration
	}

	rise := &acc{dev: Deviation{Event: orb.EventRise.String()}}
	set := &acc{dev: Deviation{Event: orb.EventSet.String()}}

	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("comparison interrupted: %w", err)
		}

		day := start.AddDate(0, 0, i)

		refRise, refSet, ok := reference(day)
		if !ok {
			rise.dev.Skipped++
			set.dev.Skipped++

			continue
		}

		for _, c := range []struct {
			acc   *acc
			event orb.Event
			want  time.Time
		}{
			{acc: rise, event: orb.EventRise, want: refRise},
			{acc: set, event: orb.EventSet, want: refSet},
		} {
			// Searching from an hour before the reference keeps the orb on
			// the same occurrence.
			got, err := o.Lookup(ctx, c.event, orb.Request{Cached: true, At: c.want.Add(-time.Hour)})
			if err != nil {
				log.WithError(err).WithField("day", day.Format(time.DateOnly)).Debug("Skipping day")
				c.acc.dev.Skipped++

				continue
			}

			diff := got.Sub(c.want)
			if diff < 0 {
				diff = -diff
			}

			c.acc.dev.Samples++
			c.acc.total += diff

			if diff > c.acc.dev.Max {
				c.acc.dev.Max = diff
				c.acc.dev.MaxAt = c.want
			}
		}
	}

	out := &Comparison{Days: days}

	for _, a := range []*acc{rise, set} {
		if a.dev.Samples > 0 {
			a.dev.Mean = a.total / time.Duration(a.dev.Samples)
		}

		out.Deviations = append(out.Deviations, a.dev)
	}

	return out, nil
}

// ObserverReference binds ephemeris.ReferenceSunriseSunset to the location of o
func ObserverReference(o *orb.Orb) ReferenceFunc {
	loc := o.Observer().Location()

	return func(day time.Time) (time.Time, time.Time, bool) {
		return ephemeris.ReferenceSunriseSunset(loc, day)
	}
}

// Render formats the comparison as a table
func (c *Comparison) Render() string {
	rows := make([][]string, 0, len(c.Deviations))

	for _, d := range c.Deviations {
		maxAt := "-"
		if !d.MaxAt.IsZero() {
			maxAt = d.MaxAt.Format(time.RFC3339)
		}

		rows = append(rows, []string{
			d.Event,
			strconv.Itoa(d.Samples),
			strconv.Itoa(d.Skipped),
			strconv.FormatFloat(d.Mean.Seconds(), 'f', 1, 64),
			strconv.FormatFloat(math.Round(d.Max.Seconds()*10)/10, 'f', 1, 64),
			maxAt,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Event", "Samples", "Skipped", "Mean (s)", "Max (s)", "Max At").
		Rows(rows...).
		Render()
}
