// Package cache provides a read-through cache for the room catalog.
//
// Only rooms and slot templates are cached. Reservations always come from
// live storage, and booking writes never consult this cache.
package cache

import (
	"context"
	"time"
)

// Backend stores opaque values with a time to live.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
