package session

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrymomot/sessionkit/pkg/securecookie"
)

// Store is the per-request façade over the session subsystem. It tracks
// pending cookie mutations keyed by cookie name — each name appears at most
// once, the last write wins — and flushes them onto the response in a
// single commit pass. Mutations never leave the store before commit, so an
// aborted request discards them for free.
type Store struct {
	mgr *Manager
	req *http.Request

	mu      sync.Mutex
	pending map[string]*pendingEntry
}

// pendingEntry is one tracked mutation. value is nil for a cookie removal,
// a string for a plain cookie, a *Session or a *securecookie.SignedCookie
// for managed state.
type pendingEntry struct {
	value any
	opts  Options
}

// GetSession returns the session for the (possibly overridden) cookie name.
// The first call fetches through the backend; repeated calls within the
// request return the same tracked session.
func (s *Store) GetSession(opts ...StoreOption) (*Session, error) {
	cc := s.mgr.callConfig(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.pending[cc.name]; ok {
		if sess, ok := e.value.(*Session); ok {
			return sess, nil
		}
	}

	backend, err := s.mgr.backend(cc.kind)
	if err != nil {
		return nil, err
	}

	sess, err := backend.Fetch(s.req.Context(), s.req, cc.name)
	if err != nil {
		return nil, err
	}

	s.pending[cc.name] = &pendingEntry{value: sess, opts: cc.opts}
	return sess, nil
}

// DestroySession marks the named session for removal: its backing record
// and cookie are deleted at commit.
func (s *Store) DestroySession(opts ...StoreOption) error {
	sess, err := s.GetSession(opts...)
	if err != nil {
		return err
	}
	sess.Destroy()
	return nil
}

// GetSecureCookie returns a signed blob bound to name, bypassing session
// backends entirely — for handler code that wants a small tamper-proof
// mapping without session semantics. Same per-name tracking as sessions.
func (s *Store) GetSecureCookie(name string, opts ...StoreOption) *securecookie.SignedCookie {
	cc := s.mgr.callConfig(nil)
	cc.name = name
	for _, opt := range opts {
		opt(&cc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.pending[cc.name]; ok {
		if c, ok := e.value.(*securecookie.SignedCookie); ok {
			return c
		}
	}

	var c *securecookie.SignedCookie
	if cc.noLoad {
		c = securecookie.NewSignedCookie(cc.name)
	} else if raw, err := s.req.Cookie(cc.name); err == nil {
		c = securecookie.FromToken(cc.name, raw.Value, s.mgr.codec)
	} else {
		c = securecookie.NewSignedCookie(cc.name)
	}

	s.pending[cc.name] = &pendingEntry{value: c, opts: cc.opts}
	return c
}

// SetCookie registers a plain, unsigned cookie write for commit time.
func (s *Store) SetCookie(name, value string, opts ...StoreOption) {
	cc := s.mgr.callConfig(opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[name] = &pendingEntry{value: value, opts: cc.opts}
}

// DeleteCookie registers a cookie removal for commit time.
func (s *Store) DeleteCookie(name string, opts ...StoreOption) {
	cc := s.mgr.callConfig(opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[name] = &pendingEntry{value: nil, opts: cc.opts}
}

// SetFlash stores a one-shot value on the default session. An optional
// channel name keeps independent flash slots apart.
func (s *Store) SetFlash(value any, channel ...string) error {
	sess, err := s.GetSession()
	if err != nil {
		return err
	}
	sess.Set(s.flashKey(channel), value)
	return nil
}

// GetFlash reads and clears the flash slot. The clear happens in the
// store-local pending state, so a second call within the same request
// reports nothing — the one-time-read guarantee costs no extra round-trip.
func (s *Store) GetFlash(channel ...string) (any, bool) {
	sess, err := s.GetSession()
	if err != nil {
		return nil, false
	}

	key := s.flashKey(channel)
	v, ok := sess.Get(key)
	if !ok {
		return nil, false
	}
	sess.Delete(key)
	return v, true
}

// Commit flushes every pending mutation onto the response exactly once:
// removals, verbatim cookie values, signed blobs and sessions (whose
// backends check dirtiness themselves). The pending map is cleared as
// entries are written, so committing an already-committed store is a
// no-op. A durable-store failure that survives its retries propagates —
// a request that believed it persisted session state must not silently
// lose it.
func (s *Store) Commit(w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := s.req.Context()

	for name, e := range s.pending {
		switch v := e.value.(type) {
		case nil:
			deleteCookie(w, name, e.opts)

		case string:
			setCookie(w, name, v, e.opts)

		case *securecookie.SignedCookie:
			if v.IsDirty() || e.opts.Force {
				if v.Len() == 0 {
					deleteCookie(w, name, e.opts)
				} else {
					token, err := s.encodeCookie(v, e.opts)
					if err != nil {
						return err
					}
					setCookie(w, name, token, e.opts)
				}
			}

		case *Session:
			backend, err := s.mgr.backend(v.kind)
			if err != nil {
				return err
			}
			if v.destroyed {
				err = backend.Delete(ctx, w, v, e.opts)
			} else {
				err = backend.Save(ctx, w, v, e.opts)
			}
			if err != nil {
				return err
			}

		default:
			return fmt.Errorf("session: unsupported pending value %T for cookie %q", v, name)
		}

		delete(s.pending, name)
	}

	return nil
}

func (s *Store) encodeCookie(c *securecookie.SignedCookie, opts Options) (string, error) {
	if opts.TTL > 0 {
		return s.mgr.codec.EncodeWithTTL(c.Values(), opts.TTL)
	}
	return s.mgr.codec.Encode(c.Values())
}

func (s *Store) flashKey(channel []string) string {
	if len(channel) > 0 && channel[0] != "" {
		return s.mgr.config.FlashKey + ":" + channel[0]
	}
	return s.mgr.config.FlashKey
}
