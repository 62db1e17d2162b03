package redislock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// unlockScript deletes the lock only if still owned by the caller.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type locker struct {
	client *redis.Client
}

// NewLocker returns a lock shared by all the replicas connected to the same
// redis instance. addr is either a redis:// URL or a host:port address.
func NewLocker(ctx context.Context, addr string) (ports.Locker, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &locker{client}, nil
}

func (l *locker) TryLock(
	ctx context.Context, key string, ttl time.Duration,
) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlockScript.Run(
			ctx, l.client, []string{key}, token,
		).Err(); err != nil {
			log.WithError(err).Warnf("failed to release lock %s", key)
		}
	}
	return unlock, true, nil
}
