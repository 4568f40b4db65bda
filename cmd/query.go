package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/observer"
	"github.com/ethpandaops/orb/pkg/orb"
	"github.com/ethpandaops/orb/pkg/render"
)

// ErrUnknownOperation is returned for a query operation orb does not know
var ErrUnknownOperation = errors.New("unknown operation, expected noon, midnight, rise, set, pos, phase or light")

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	queryLocation     locationFlags
	queryBody         string
	queryCached       bool
	queryDT           string
	queryMinuteOffset float64
	queryDegreeOffset float64
	queryCenter       bool
	queryRadians      bool
	queryTemplate     string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var queryCmd = &cobra.Command{
	Use:   "query <noon|midnight|rise|set|pos|phase|light>",
	Short: "Resolve one query for an observer",
	Long: `Resolves a single event, position or lunar query and prints it. The output
can be shaped with --template, a Go text/template with Sprig functions.`,
	Example: `  orb query rise --lat 52.52 --lon 13.405 --dt 2023-06-01T00:00:00+02:00
  orb query light --body moon --template '{{ .Value }}%'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryLocation.bind(queryCmd)
	queryCmd.Flags().StringVar(&queryBody, "body", "sun", "celestial body (sun or moon)")
	queryCmd.Flags().BoolVar(&queryCached, "cached", false, "serve the event from the event cache")
	queryCmd.Flags().StringVar(&queryDT, "dt", "", "reference time in RFC3339 (default now)")
	queryCmd.Flags().Float64Var(&queryMinuteOffset, "minute-offset", 0, "minutes added to the result")
	queryCmd.Flags().Float64Var(&queryDegreeOffset, "degree-offset", 0, "altitude in degrees for rise and set")
	queryCmd.Flags().BoolVar(&queryCenter, "center", true, "measure the disc centre instead of the upper limb")
	queryCmd.Flags().BoolVar(&queryRadians, "radians", false, "print pos in radians")
	queryCmd.Flags().StringVar(&queryTemplate, "template", "", "output template (Go text/template with Sprig functions)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	body, err := observer.ParseBody(queryBody)
	if err != nil {
		return err
	}

	at, err := parseTime(queryDT)
	if err != nil {
		return fmt.Errorf("invalid --dt: %w", err)
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}

	tmpl, err := render.New(queryTemplate)
	if err != nil {
		return err
	}

	o, err := queryLocation.newOrb("cli", body, cache.DefaultConfig())
	if err != nil {
		return err
	}

	operation := strings.ToLower(args[0])

	result := render.Result{
		Observer:  o.Observer().Name(),
		Body:      body.String(),
		Operation: operation,
		Cached:    queryCached,
		At:        at,
	}

	ctx := cmd.Context()

	switch operation {
	case "pos":
		pos, err := o.Pos(ctx, queryMinuteOffset, !queryRadians, at)
		if err != nil {
			return err
		}

		result.Position = &render.Position{Azimuth: pos.Azimuth, Altitude: pos.Altitude}
	case "phase", "light":
		moon, err := o.Moon()
		if err != nil {
			return err
		}

		query := moon.Phase
		if operation == "light" {
			query = moon.Light
		}

		value, err := query(ctx, queryMinuteOffset, at)
		if err != nil {
			return err
		}

		result.Value = &value
	default:
		event, err := orb.ParseEvent(operation)
		if err != nil {
			return ErrUnknownOperation
		}

		next, err := o.Lookup(ctx, event, orb.Request{
			Cached:       queryCached,
			DegreeOffset: queryDegreeOffset,
			MinuteOffset: queryMinuteOffset,
			UseCenter:    queryCenter,
			At:           at,
		})
		if err != nil {
			return err
		}

		result.Operation = event.String()
		result.Time = next
	}

	return tmpl.Execute(cmd.OutOrStdout(), result)
}
