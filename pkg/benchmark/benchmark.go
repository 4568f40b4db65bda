// Package benchmark times every orb query over a range of reference times
// and reports the average latency per method
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/orb"
)

var (
	// ErrInvalidRange is returned when the range is empty
	ErrInvalidRange = errors.New("benchmark end must be after start")
	// ErrInvalidStep is returned when the step is not positive
	ErrInvalidStep = errors.New("benchmark step must be positive")
)

// Config describes the reference times to sample
type Config struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// Validate checks the sampling range
func (c *Config) Validate() error {
	if !c.End.After(c.Start) {
		return ErrInvalidRange
	}

	if c.Step <= 0 {
		return ErrInvalidStep
	}

	return nil
}

// Method is one timed query
type Method struct {
	Name string
	Run  func(ctx context.Context, at time.Time) error
}

// Suite groups the methods run against one subject
type Suite struct {
	Name    string
	Methods []Method
}

// SunSuite times every event query, cached and uncached, plus pos
func SunSuite(name string, o *orb.Orb) Suite {
	methods := make([]Method, 0, 2*len(orb.Events())+1)

	for _, event := range orb.Events() {
		for _, cached := range []bool{false, true} {
			methodName := event.String()
			if cached {
				methodName += "_cached"
			}

			methods = append(methods, Method{
				Name: methodName,
				Run: func(ctx context.Context, at time.Time) error {
					_, err := o.Lookup(ctx, event, orb.Request{Cached: cached, UseCenter: true, At: at})
					return err
				},
			})
		}
	}

	methods = append(methods, Method{
		Name: "pos",
		Run: func(ctx context.Context, at time.Time) error {
			_, err := o.Pos(ctx, 0, false, at)
			return err
		},
	})

	return Suite{Name: name, Methods: methods}
}

// MoonSuite times phase and light; o must watch the Moon
func MoonSuite(name string, o *orb.Orb) (Suite, error) {
	moon, err := o.Moon()
	if err != nil {
		return Suite{}, err
	}

	return Suite{
		Name: name,
		Methods: []Method{
			{
				Name: "phase",
				Run: func(ctx context.Context, at time.Time) error {
					_, err := moon.Phase(ctx, 0, at)
					return err
				},
			},
			{
				Name: "light",
				Run: func(ctx context.Context, at time.Time) error {
					_, err := moon.Light(ctx, 0, at)
					return err
				},
			},
		},
	}, nil
}

// Result aggregates the timings of one method
type Result struct {
	Suite  string
	Method string
	Calls  int
	Errors int
	Total  time.Duration
}

// Average is the mean duration of the successful calls
func (r Result) Average() time.Duration {
	if r.Calls == 0 {
		return 0
	}

	return r.Total / time.Duration(r.Calls)
}

// Report holds one result per suite and method, in run order
type Report struct {
	Samples int
	Results []Result
}

// Run samples every Step from Start until End and times each method of
// every suite at that instant. Failed calls are logged and counted but not
// timed.
func Run(ctx context.Context, cfg Config, suites []Suite, log logrus.FieldLogger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log = log.WithField("component", "benchmark")

	index := make(map[string]int)
	report := &Report{}

	for _, suite := range suites {
		for _, m := range suite.Methods {
			index[suite.Name+"/"+m.Name] = len(report.Results)
			report.Results = append(report.Results, Result{Suite: suite.Name, Method: m.Name})
		}
	}

	for at := cfg.Start; at.Before(cfg.End); at = at.Add(cfg.Step) {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("benchmark interrupted: %w", err)
		}

		for _, suite := range suites {
			for _, m := range suite.Methods {
				res := &report.Results[index[suite.Name+"/"+m.Name]]

				start := time.Now()
				err := m.Run(ctx, at)
				elapsed := time.Since(start)

				if err != nil {
					res.Errors++

					log.WithError(err).WithFields(logrus.Fields{
						"suite":  suite.Name,
						"method": m.Name,
						"at":     at.Format(time.RFC3339),
					}).Warn("Benchmark call failed")

					continue
				}

				res.Calls++
				res.Total += elapsed
			}
		}

		report.Samples++
	}

	return report, nil
}

// Render formats the report as a table
func (r *Report) Render() string {
	rows := make([][]string, 0, len(r.Results))

	for _, res := range r.Results {
		rows = append(rows, []string{
			res.Suite,
			res.Method,
			strconv.FormatFloat(res.Average().Seconds(), 'f', 6, 64),
			strconv.Itoa(res.Calls),
			strconv.Itoa(res.Errors),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Suite", "Method", "Average Time (s)", "Calls", "Errors").
		Rows(rows...).
		Render()
}
