package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/orb/internal/testutil"
	"github.com/ethpandaops/orb/pkg/publish"
	"github.com/ethpandaops/orb/pkg/redis"
)

func TestReadAnnouncement(t *testing.T) {
	mr, client := testutil.NewMiniredisClient(t)
	ctx := context.Background()

	cfg := &redis.Config{URL: "redis://" + mr.Addr(), Prefix: "orb"}

	publisher, err := publish.NewRedis(client, cfg, logger)
	require.NoError(t, err)

	sunrise := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)
	dawn := sunrise.Add(-40 * time.Minute)

	require.NoError(t, publisher.Publish(ctx, []publish.Announcement{
		{Observer: "berlin", Body: "sun", Event: "rise", Time: sunrise, ComputedAt: time.Now()},
		{Observer: "berlin", Body: "sun", Event: "rise@-6", Time: dawn, ComputedAt: time.Now()},
	}))

	got, err := readAnnouncement(ctx, cfg, "berlin", "rise")
	require.NoError(t, err)
	assert.True(t, sunrise.Equal(got), got)

	got, err = readAnnouncement(ctx, cfg, "berlin", "rise@-6")
	require.NoError(t, err)
	assert.True(t, dawn.Equal(got), got)

	_, err = readAnnouncement(ctx, cfg, "berlin", "set")
	require.ErrorIs(t, err, ErrNoAnnouncement)
	assert.Contains(t, err.Error(), "orb:events:berlin:set")

	_, err = readAnnouncement(ctx, &redis.Config{URL: "redis://" + mr.Addr(), Prefix: "other"}, "berlin", "rise")
	require.ErrorIs(t, err, ErrNoAnnouncement)

	_, err = readAnnouncement(ctx, &redis.Config{}, "berlin", "rise")
	require.ErrorIs(t, err, redis.ErrURLRequired)
}

func TestAnnouncementCommand(t *testing.T) {
	mr := testutil.NewMiniredis(t)

	noon := time.Now().Add(5 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, mr.Set("orb:events:berlin:noon", noon.Format(time.RFC3339)))

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"announcement", "berlin", "noon", "--redis-url", "redis://" + mr.Addr()})

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Equal(t, noon.Format(time.RFC3339)+"\n", out.String())
}
