package caches

import (
	"context"
	"time"
)

// ResponseCache memoizes raw upstream payloads for a bounded time.
// Get reports false on a miss or an expired entry.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
