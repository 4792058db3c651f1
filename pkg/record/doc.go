// Package record is the storage substrate for server-held sessions: the
// durable session record, the stores that hold it and the cache mirror that
// keeps reads fast without ever being allowed to lie.
//
// # Architecture
//
// A Record pairs a session id with its payload and lifecycle timestamps.
// Three layers move records around:
//
//   - DurableStore — the authoritative store (PostgresStore via pgx, or
//     MemoryStore for tests and development).
//   - Cache — a best-effort byte store (RedisCache) holding records in a
//     compact msgpack encoding under a dedicated key namespace.
//   - Loader — the fetch/save/delete surface session backends consume,
//     implemented by Mirror (cache over durable) and CacheStore (cache
//     only, for ephemeral sessions).
//
// # Consistency rules
//
// The durable store wins every argument. Mirror reads try the cache first
// and fall back to the durable store on a miss or any cache failure,
// repopulating the cache best-effort. Writes go to the durable store first
// — retried with bounded exponential backoff on timeout-class errors — and
// only a confirmed write is mirrored into the cache. Deletes are attempted
// on both layers; only the durable outcome is reported.
//
// Expiry is enforced when records are read, not by a background sweep: an
// expired record is simply not found, and an expired cache entry is evicted
// so it cannot outlive the durable deadline. PostgresStore.DeleteExpired
// exists for operators who want to reclaim space eventually.
//
// # Usage
//
//	pool, _ := pgxpool.New(ctx, connString)
//	_ = record.Migrate(ctx, pool, slog.Default())
//
//	mirror := record.NewMirror(
//	    record.NewPostgresStore(pool),
//	    record.NewRedisCache(redisClient, "sessionkit:"),
//	    record.WithCacheTTL(10*time.Minute),
//	    record.WithRetry(3, 100*time.Millisecond),
//	)
//
//	rec, err := mirror.Get(ctx, sid)
//	if errors.Is(err, record.ErrNotFound) {
//	    // absent is a value, not an exception
//	}
package record
