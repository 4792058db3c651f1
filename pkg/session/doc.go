// Package session gives each HTTP request a consistent, tamper-proof unit
// of server-held state, with a one-shot flash channel on top, across three
// interchangeable backends.
//
// # Architecture
//
// A long-lived Manager owns the cookie codec, the backend set and the
// configured defaults. Per request it hands out a Store: a request-scoped
// façade that tracks pending cookie mutations keyed by cookie name and
// flushes them onto the response in one commit pass.
//
//	┌─────────┐  cookies   ┌───────────────────┐
//	│ Request │ ─────────► │  Store (1/request) │
//	└─────────┘            └───────────────────┘
//	                              │ fetch/save/delete
//	                              ▼
//	          ┌──────────────┬──────────────┬─────────────┐
//	          │ CookieBackend│ DurableBackend│ CacheBackend│
//	          └──────────────┴──────────────┴─────────────┘
//	             signed cookie   record.Mirror  record.CacheStore
//
// The backend set is closed: KindCookie keeps the payload in the signed
// cookie itself, KindDurable keeps it in a cache-mirrored durable store
// with only the id in the cookie, KindCache keeps it solely in the cache.
// All three expose the same fetch/save/delete contract and are selected by
// configuration, not by call-site branching.
//
// # Lifecycle
//
// Sessions are created on first access when no valid cookie is presented,
// mutated by handler code during the request, and persisted at commit only
// if dirty. An invalid, tampered or expired cookie is indistinguishable
// from no cookie: the user appears as a new anonymous session, never as an
// error. Destroy marks a session so commit deletes its record and cookie
// instead of saving.
//
// # Usage
//
//	mgr, err := session.New(cfg,
//	    session.WithDurableStore(mirror),
//	    session.WithLogger(log),
//	)
//	if err != nil {
//	    log.Error("session manager", slog.Any("error", err))
//	    os.Exit(1)
//	}
//
//	mux.Handle("/", mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    store := session.MustFromContext(r.Context())
//	    sess, _ := store.GetSession()
//	    visits, _ := sess.GetInt("visits")
//	    sess.Set("visits", visits+1)
//	    _ = store.SetFlash("saved")
//	})))
//
// The middleware commits pending mutations right before the first response
// byte, so handlers never call Commit themselves; pipelines that manage
// responses manually may instead call Store.Commit exactly once at the end
// of the request.
//
// # Concurrency
//
// One Store exists per in-flight request and is not shared. The Manager,
// codec and backends are stateless with respect to requests and safe for
// concurrent use. Writes to the same session id from concurrent requests
// are last-write-wins; the subsystem promises per-request commit atomicity,
// not cross-request consistency.
package session
