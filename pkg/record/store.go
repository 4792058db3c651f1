package record

import (
	"context"
	"time"
)

// DurableStore is the authoritative persistence layer for session records.
// Implementations return ErrNotFound when no record exists; expiry filtering
// is the caller's concern so the store stays a dumb key/value surface.
type DurableStore interface {
	Get(ctx context.Context, sid string) (*Record, error)
	Put(ctx context.Context, r *Record) error
	Delete(ctx context.Context, sid string) error
}

// Cache is a best-effort byte store in front of the durable store. Get
// returns ErrNotFound on a miss; any other error is treated by callers as a
// miss too, never as a hard failure.
type Cache interface {
	Get(ctx context.Context, sid string) ([]byte, error)
	Set(ctx context.Context, sid string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// Loader is what session backends consume: fetch-or-miss, save, delete over
// whole records. Mirror (cache + durable) and CacheStore (cache only) both
// satisfy it.
type Loader interface {
	Get(ctx context.Context, sid string) (*Record, error)
	Put(ctx context.Context, r *Record) error
	Delete(ctx context.Context, sid string) error
}
