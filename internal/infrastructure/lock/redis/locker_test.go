package redislock_test

import (
	"context"
	"os"
	"testing"
	"time"

	redislock "github.com/bushboy/bookingswap-sub023/internal/infrastructure/lock/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const redisAddrEnv = "SWAPD_TEST_REDIS_ADDR"

func TestTryLock(t *testing.T) {
	addr := os.Getenv(redisAddrEnv)
	if len(addr) <= 0 {
		t.Skipf("%s not set", redisAddrEnv)
	}

	ctx := context.Background()
	locker, err := redislock.NewLocker(ctx, addr)
	require.NoError(t, err)

	key := "swapd:test:" + uuid.New().String()

	unlock, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	unlock()

	unlock, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	unlock()
}
