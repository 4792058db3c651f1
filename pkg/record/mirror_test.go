package record_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/record"
)

// flakyStore fails Put with a timeout-class error a configured number of
// times before succeeding.
type flakyStore struct {
	record.DurableStore

	mu       sync.Mutex
	failures int
	putCalls int
}

func (f *flakyStore) Put(ctx context.Context, r *record.Record) error {
	f.mu.Lock()
	f.putCalls++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return context.DeadlineExceeded
	}
	return f.DurableStore.Put(ctx, r)
}

func (f *flakyStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *record.RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, record.NewRedisCache(client, "test:")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMirror_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("miss on both layers", func(t *testing.T) {
		t.Parallel()

		_, cache := setupCache(t)
		mirror := record.NewMirror(record.NewMemoryStore(), cache, record.WithLogger(quietLogger()))

		_, err := mirror.Get(ctx, "0000000000000000000000000000000000000000")
		assert.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("cache miss repopulates from durable", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("a1")
		rec.Payload["user"] = "alice"
		require.NoError(t, durable.Put(ctx, rec))

		got, err := mirror.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Payload["user"])

		// The read-through populated the cache under the namespaced key.
		assert.True(t, mr.Exists("test:a1"))
	})

	t.Run("cache hit does not touch durable", func(t *testing.T) {
		t.Parallel()

		_, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("a2")
		rec.Payload["user"] = "bob"
		require.NoError(t, mirror.Put(ctx, rec))

		// Remove from the durable store; a cache hit must still serve it.
		require.NoError(t, durable.Delete(ctx, "a2"))

		got, err := mirror.Get(ctx, "a2")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Payload["user"])
	})

	t.Run("cache outage falls back to durable", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("a3")
		rec.Payload["user"] = "carol"
		require.NoError(t, durable.Put(ctx, rec))

		mr.Close()

		got, err := mirror.Get(ctx, "a3")
		require.NoError(t, err)
		assert.Equal(t, "carol", got.Payload["user"])
	})

	t.Run("expired record in cache is not found", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("a4")
		rec.ExpiresAt = time.Now().Add(-time.Minute)
		data, err := rec.Encode()
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, "a4", data, 0))

		_, err = mirror.Get(ctx, "a4")
		assert.ErrorIs(t, err, record.ErrNotFound)

		// The stale entry was evicted so it cannot be served again.
		assert.False(t, mr.Exists("test:a4"))
	})

	t.Run("expired record in durable is not found", func(t *testing.T) {
		t.Parallel()

		_, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("a5")
		rec.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, durable.Put(ctx, rec))

		_, err := mirror.Get(ctx, "a5")
		assert.ErrorIs(t, err, record.ErrNotFound)
	})
}

func TestMirror_Put(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cache mirrors confirmed write", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("b1")
		rec.Payload["user"] = "alice"
		require.NoError(t, mirror.Put(ctx, rec))

		// Same payload readable from either layer (simulate cache eviction).
		fromCache, err := mirror.Get(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "alice", fromCache.Payload["user"])

		mr.FlushAll()

		fromDurable, err := mirror.Get(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "alice", fromDurable.Payload["user"])
	})

	t.Run("retries timeouts then succeeds", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		flaky := &flakyStore{DurableStore: record.NewMemoryStore(), failures: 2}
		mirror := record.NewMirror(flaky, cache,
			record.WithRetry(2, time.Millisecond),
			record.WithLogger(quietLogger()))

		rec := record.New("b2")
		rec.Payload["user"] = "bob"
		require.NoError(t, mirror.Put(ctx, rec))
		assert.Equal(t, 3, flaky.calls())

		// The cache holds the confirmed value.
		assert.True(t, mr.Exists("test:b2"))
	})

	t.Run("fails after retry exhaustion, cache untouched", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		flaky := &flakyStore{DurableStore: record.NewMemoryStore(), failures: 3}
		mirror := record.NewMirror(flaky, cache,
			record.WithRetry(2, time.Millisecond),
			record.WithLogger(quietLogger()))

		rec := record.New("b3")
		err := mirror.Put(ctx, rec)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 3, flaky.calls())

		// An unconfirmed write must never reach the cache.
		assert.False(t, mr.Exists("test:b3"))
	})

	t.Run("non-timeout error is not retried", func(t *testing.T) {
		t.Parallel()

		_, cache := setupCache(t)
		boom := errors.New("constraint violation")
		failing := &errStore{err: boom}
		mirror := record.NewMirror(failing, cache,
			record.WithRetry(5, time.Millisecond),
			record.WithLogger(quietLogger()))

		err := mirror.Put(ctx, record.New("b4"))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, failing.putCalls)
	})

	t.Run("nil record", func(t *testing.T) {
		t.Parallel()

		_, cache := setupCache(t)
		mirror := record.NewMirror(record.NewMemoryStore(), cache, record.WithLogger(quietLogger()))
		assert.ErrorIs(t, mirror.Put(ctx, nil), record.ErrNilRecord)
	})
}

func TestMirror_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("removes from both layers", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("c1")
		require.NoError(t, mirror.Put(ctx, rec))
		require.True(t, mr.Exists("test:c1"))

		require.NoError(t, mirror.Delete(ctx, "c1"))
		assert.False(t, mr.Exists("test:c1"))

		_, err := durable.Get(ctx, "c1")
		assert.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("durable delete attempted even when cache is down", func(t *testing.T) {
		t.Parallel()

		mr, cache := setupCache(t)
		durable := record.NewMemoryStore()
		mirror := record.NewMirror(durable, cache, record.WithLogger(quietLogger()))

		rec := record.New("c2")
		require.NoError(t, durable.Put(ctx, rec))

		mr.Close()

		require.NoError(t, mirror.Delete(ctx, "c2"))
		_, err := durable.Get(ctx, "c2")
		assert.ErrorIs(t, err, record.ErrNotFound)
	})
}

// errStore always fails Put with a fixed, non-retryable error.
type errStore struct {
	record.DurableStore

	err      error
	putCalls int
}

func (e *errStore) Put(ctx context.Context, r *record.Record) error {
	e.putCalls++
	return e.err
}
