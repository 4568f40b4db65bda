package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/orb/pkg/publish"
	"github.com/ethpandaops/orb/pkg/redis"
)

// ErrNoAnnouncement is returned when no instance has published the event
var ErrNoAnnouncement = errors.New("no announcement published")

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	announcementRedisURL string
	announcementPrefix   string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var announcementCmd = &cobra.Command{
	Use:   "announcement <observer> <event>",
	Short: "Read the next published occurrence of an event from Redis",
	Long: `Reads the next occurrence a serving instance published for one observer and
event, and prints it in RFC3339. Offset warm-ups are published as the event
name followed by @ and the degree offset.`,
	Example: `  orb announcement berlin rise --redis-url redis://localhost:6379/0
  orb announcement berlin rise@-6 --redis-prefix orb`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnouncement,
}

func init() {
	rootCmd.AddCommand(announcementCmd)

	announcementCmd.Flags().StringVar(&announcementRedisURL, "redis-url", "redis://localhost:6379/0", "redis url the announcements are published to")
	announcementCmd.Flags().StringVar(&announcementPrefix, "redis-prefix", "orb", "key prefix of the publishing instance")
}

func runAnnouncement(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	next, err := readAnnouncement(cmd.Context(), &redis.Config{
		URL:    announcementRedisURL,
		Prefix: announcementPrefix,
	}, args[0], args[1])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), next.Format(time.RFC3339))

	return err
}

// readAnnouncement reads the stored next occurrence of event for observer
func readAnnouncement(ctx context.Context, cfg *redis.Config, observer, event string) (time.Time, error) {
	client, err := redis.New(cfg)
	if err != nil {
		return time.Time{}, err
	}

	defer func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close redis client")
		}
	}()

	publisher, err := publish.NewRedis(client, cfg, logger)
	if err != nil {
		return time.Time{}, err
	}

	next, ok, err := publisher.Next(ctx, observer, event)
	if err != nil {
		return time.Time{}, err
	}

	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s for %s under %s", ErrNoAnnouncement, event, observer, publisher.EventKey(observer, event))
	}

	return next, nil
}
