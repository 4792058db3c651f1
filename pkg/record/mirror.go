package record

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBase     = 100 * time.Millisecond
)

// Mirror is a read-through/write-through cache in front of a durable store.
// The durable store is authoritative: cache misses and cache failures fall
// back to it, and the cache is only updated with writes the durable store
// has confirmed.
type Mirror struct {
	durable       DurableStore
	cache         Cache
	cacheTTL      time.Duration
	retryAttempts uint64
	retryBase     time.Duration
	log           *slog.Logger
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithCacheTTL caps how long a cache entry may outlive its last durable
// write. Records with their own expiry use the shorter of the two.
func WithCacheTTL(ttl time.Duration) MirrorOption {
	return func(m *Mirror) {
		if ttl > 0 {
			m.cacheTTL = ttl
		}
	}
}

// WithRetry tunes the backoff applied to durable writes: attempts additional
// tries after the first failure, waiting base, 2*base, 4*base, ... between
// them.
func WithRetry(attempts uint64, base time.Duration) MirrorOption {
	return func(m *Mirror) {
		m.retryAttempts = attempts
		if base > 0 {
			m.retryBase = base
		}
	}
}

// WithLogger routes cache-failure warnings to the given logger.
func WithLogger(log *slog.Logger) MirrorOption {
	return func(m *Mirror) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMirror creates a mirror over the given durable store and cache.
func NewMirror(durable DurableStore, cache Cache, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		durable:       durable,
		cache:         cache,
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBase,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the record for sid, serving from the cache when possible. On
// a cache miss the durable store is consulted and the cache repopulated
// best-effort. Expired records are treated as not found and evicted from
// the cache so a stale entry can never extend a session past its durable
// expiry.
func (m *Mirror) Get(ctx context.Context, sid string) (*Record, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}

	now := time.Now()

	if data, err := m.cache.Get(ctx, sid); err == nil {
		if rec, err := Decode(data); err == nil {
			if rec.Expired(now) {
				_ = m.cache.Delete(ctx, sid)
				return nil, ErrNotFound
			}
			return rec, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		m.log.WarnContext(ctx, "session cache read failed, falling back to durable store",
			slog.String("sid", sid), slog.Any("error", err))
	}

	rec, err := m.durable.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if rec.Expired(now) {
		return nil, ErrNotFound
	}

	m.repopulate(ctx, rec)
	return rec, nil
}

// Put writes the record to the durable store first, retrying timeout-class
// failures with bounded exponential backoff, then mirrors the confirmed
// state into the cache. If the durable write ultimately fails the error
// propagates and the cache is left untouched: it must never hold a write
// the durable store did not accept.
func (m *Mirror) Put(ctx context.Context, r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	if r.SID == "" {
		return ErrEmptySID
	}

	r.UpdatedAt = time.Now()

	backoff := retry.WithMaxRetries(m.retryAttempts, retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := m.durable.Put(ctx, r); err != nil {
			if isTimeout(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.repopulate(ctx, r)
	return nil
}

// Delete removes the record from both layers. The cache delete is
// best-effort; the durable delete is authoritative and its error is
// returned. Both are always attempted.
func (m *Mirror) Delete(ctx context.Context, sid string) error {
	if sid == "" {
		return ErrEmptySID
	}

	if err := m.cache.Delete(ctx, sid); err != nil && !errors.Is(err, ErrNotFound) {
		m.log.WarnContext(ctx, "session cache delete failed",
			slog.String("sid", sid), slog.Any("error", err))
	}

	return m.durable.Delete(ctx, sid)
}

// repopulate mirrors a confirmed record into the cache. Failures only cost
// latency on the next read, so they are logged and swallowed.
func (m *Mirror) repopulate(ctx context.Context, rec *Record) {
	data, err := rec.Encode()
	if err != nil {
		m.log.WarnContext(ctx, "session record encode failed, cache not updated",
			slog.String("sid", rec.SID), slog.Any("error", err))
		return
	}

	ttl := m.cacheTTL
	if remaining := rec.TTL(time.Now()); remaining > 0 && (ttl == 0 || remaining < ttl) {
		ttl = remaining
	}

	if err := m.cache.Set(ctx, rec.SID, data, ttl); err != nil {
		m.log.WarnContext(ctx, "session cache write failed",
			slog.String("sid", rec.SID), slog.Any("error", err))
	}
}

// isTimeout classifies transient, retry-worthy store failures. Anything
// else (constraint violations, closed pools, cancellations by the caller)
// fails immediately.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
