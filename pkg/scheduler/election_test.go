package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/orb/internal/testutil"
)

const (
	testLease = 2 * time.Second
	testRenew = 50 * time.Millisecond
	testKey   = "orb:scheduler:leader"
)

func TestLeaderElection(t *testing.T) {
	mr, client := testutil.NewMiniredisClient(t)

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	t.Run("single instance becomes leader", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()

		elector := NewLeaderElector(log, client, testKey, testLease, testRenew)
		require.NoError(t, elector.Start(ctx))
		defer elector.Stop()

		require.Eventually(t, elector.IsLeader, time.Second, 10*time.Millisecond)
		assert.True(t, mr.Exists(testKey))
	})

	t.Run("multiple instances elect one leader", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()

		elector1 := NewLeaderElector(log, client, testKey, testLease, testRenew)
		elector2 := NewLeaderElector(log, client, testKey, testLease, testRenew)

		require.NoError(t, elector1.Start(ctx))
		defer elector1.Stop()

		require.NoError(t, elector2.Start(ctx))
		defer elector2.Stop()

		require.Eventually(t, func() bool {
			return elector1.IsLeader() || elector2.IsLeader()
		}, time.Second, 10*time.Millisecond)

		time.Sleep(5 * testRenew)

		leaders := 0
		if elector1.IsLeader() {
			leaders++
		}

		if elector2.IsLeader() {
			leaders++
		}

		assert.Equal(t, 1, leaders, "Exactly one instance should be leader")
	})

	t.Run("leader failover", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()

		elector1 := NewLeaderElector(log, client, testKey, testLease, testRenew)
		require.NoError(t, elector1.Start(ctx))
		require.Eventually(t, elector1.IsLeader, time.Second, 10*time.Millisecond)

		elector2 := NewLeaderElector(log, client, testKey, testLease, testRenew)
		require.NoError(t, elector2.Start(ctx))
		defer elector2.Stop()

		time.Sleep(3 * testRenew)
		assert.False(t, elector2.IsLeader())

		require.NoError(t, elector1.Stop())
		assert.False(t, elector1.IsLeader())

		require.Eventually(t, elector2.IsLeader, time.Second, 10*time.Millisecond)
	})

	t.Run("wait for leadership", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()

		elector := NewLeaderElector(log, client, testKey, testLease, testRenew)
		require.NoError(t, elector.Start(ctx))
		defer elector.Stop()

		require.NoError(t, elector.WaitForLeadership(ctx))
		assert.True(t, elector.IsLeader())
	})

	t.Run("stopped elector stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mr.FlushAll()
		require.NoError(t, mr.Set(testKey, "someone-else"))

		elector := NewLeaderElector(log, client, testKey, testLease, testRenew)
		require.NoError(t, elector.Start(ctx))
		require.NoError(t, elector.Stop())

		assert.ErrorIs(t, elector.WaitForLeadership(ctx), ErrElectorStopped)
	})
}
