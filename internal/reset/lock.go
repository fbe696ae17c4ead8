package reset

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"gymsched/internal/logger"
)

const (
	lockKey = "gymsched:reset:global_lock"
	lockTTL = 10 * time.Minute
)

// CronLock is a redis SETNX lock around the global reset job, so deployments
// running several instances execute the weekly reset exactly once.
type CronLock struct {
	client *redis.Client
}

func NewCronLock(client *redis.Client) *CronLock {
	return &CronLock{client: client}
}

func (l *CronLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, lockKey, "1", lockTTL).Result()
}

func (l *CronLock) Release(ctx context.Context) {
	if err := l.client.Del(ctx, lockKey).Err(); err != nil {
		logger.Errorf("failed to release reset lock: %v", err)
	}
}
