package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redisURL and pings it. blockingWorkers is the number of
// pool goroutines that sit in BRPOP; each pins a connection, so the pool is
// sized on top of them.
func NewRedis(ctx context.Context, redisURL string, blockingWorkers int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	if floor := blockingWorkers + 10; opts.PoolSize < floor {
		opts.PoolSize = floor
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}
