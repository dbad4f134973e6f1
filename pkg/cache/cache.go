// Package cache provides byte-level caching for computed layouts and
// rendered artifacts, keyed by content hashes. Backends cover local CLI
// use (files), shared server deployments (redis) and disabled caching
// (null).
package cache

import (
	"context"
	"time"
)

// TTLs callers apply when storing computed results. Layouts age out
// faster than artifacts: a layout tool upgrade changes coordinates,
// while an artifact is pinned to the exact layout bytes it was rendered
// from.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with a false second return and a nil error; errors
// are reserved for backend failures. Set with a zero ttl stores the
// entry without an expiration. Implementations are safe for concurrent
// use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
