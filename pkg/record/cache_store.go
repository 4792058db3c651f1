package record

import (
	"context"
	"time"
)

// CacheStore keeps records solely in the cache, with no durable fallback.
// The cache may evict entries at any time; an evicted session simply looks
// new on its next request. That is an accepted trade-off for ephemeral
// sessions, not an error.
type CacheStore struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewCacheStore creates a cache-only record store. defaultTTL bounds
// entries for records that carry no expiry of their own; zero means no
// bound.
func NewCacheStore(cache Cache, defaultTTL time.Duration) *CacheStore {
	return &CacheStore{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached record for sid. Misses, undecodable entries and
// expired records all report ErrNotFound.
func (s *CacheStore) Get(ctx context.Context, sid string) (*Record, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}

	data, err := s.cache.Get(ctx, sid)
	if err != nil {
		return nil, ErrNotFound
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, ErrNotFound
	}
	if rec.Expired(time.Now()) {
		_ = s.cache.Delete(ctx, sid)
		return nil, ErrNotFound
	}

	return rec, nil
}

// Put stores the record under its sid, bounded by the record's own expiry
// or the store default.
func (s *CacheStore) Put(ctx context.Context, r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	if r.SID == "" {
		return ErrEmptySID
	}

	r.UpdatedAt = time.Now()

	data, err := r.Encode()
	if err != nil {
		return err
	}

	ttl := s.defaultTTL
	if remaining := r.TTL(time.Now()); remaining > 0 && (ttl == 0 || remaining < ttl) {
		ttl = remaining
	}

	return s.cache.Set(ctx, r.SID, data, ttl)
}

// Delete removes the record for sid.
func (s *CacheStore) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrEmptySID
	}
	return s.cache.Delete(ctx, sid)
}
