// Package cache provides the TTL store shared by the notification engine
// (admin recipient list) and the HTTP rate limiter. Memory backs single-instance
// deployments and tests; Redis backs multi-instance deployments.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a string-keyed cache with per-entry TTL. Values are JSON encoded.
type Store interface {
	// Get decodes the value stored under key into dest, or returns ErrMiss.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr bumps a fixed-window counter. The window starts at the first
	// increment and lasts ttl; the returned time is when it resets.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Time, error)
}
