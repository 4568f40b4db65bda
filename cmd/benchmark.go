package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/orb/pkg/benchmark"
	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/observer"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	benchLocation locationFlags
	benchStart    string
	benchEnd      string
	benchStep     time.Duration

	compareLocation locationFlags
	compareStart    string
	compareDays     int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Time every query over a range of reference times",
	Long: `Runs noon, midnight, rise and set (cached and uncached) and pos for the Sun,
plus phase and light for the Moon, once per step over the range, and prints the
average time and number of calls per method.`,
	RunE: runBenchmark,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare Meeus sunrise and sunset against an independent algorithm",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(compareCmd)

	benchLocation.bind(benchmarkCmd)
	benchmarkCmd.Flags().StringVar(&benchStart, "start", "2024-01-01T00:00:00+01:00", "first reference time (RFC3339)")
	benchmarkCmd.Flags().StringVar(&benchEnd, "end", "2024-01-08T00:00:00+01:00", "end of the range, exclusive (RFC3339)")
	benchmarkCmd.Flags().DurationVar(&benchStep, "step", time.Hour, "interval between reference times")

	compareLocation.bind(compareCmd)
	compareCmd.Flags().StringVar(&compareStart, "start", "2024-01-01T00:00:00Z", "first UTC date (RFC3339)")
	compareCmd.Flags().IntVar(&compareDays, "days", 365, "number of days to compare")
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	start, err := parseTime(benchStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	end, err := parseTime(benchEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	sun, err := benchLocation.newOrb("sun", observer.BodySun, cache.DefaultConfig())
	if err != nil {
		return err
	}

	moon, err := benchLocation.newOrb("moon", observer.BodyMoon, cache.DefaultConfig())
	if err != nil {
		return err
	}

	moonSuite, err := benchmark.MoonSuite("moon", moon)
	if err != nil {
		return err
	}

	report, err := benchmark.Run(cmd.Context(), benchmark.Config{
		Start: start,
		End:   end,
		Step:  benchStep,
	}, []benchmark.Suite{benchmark.SunSuite("sun", sun), moonSuite}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d samples from %s to %s\n%s\n",
		report.Samples, start.Format(time.RFC3339), end.Format(time.RFC3339), report.Render())

	return nil
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	start, err := parseTime(compareStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	sun, err := compareLocation.newOrb("sun", observer.BodySun, cache.DefaultConfig())
	if err != nil {
		return err
	}

	cmp, err := benchmark.Compare(cmd.Context(), sun, benchmark.ObserverReference(sun), start, compareDays, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cmp.Render())

	return nil
}
