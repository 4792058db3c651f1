package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/record"
	"github.com/dmitrymomot/sessionkit/pkg/securecookie"
)

// sidKey is the single claim carried by the signed id cookie of stored
// sessions.
const sidKey = "sid"

// recordBackend is the shared shape of the two server-side variants: the
// session id travels in a signed cookie, the payload lives in a record
// loader.
type recordBackend struct {
	codec  *securecookie.Codec
	loader record.Loader
	kind   Kind
}

// DurableBackend stores payloads in a cache-mirrored durable store.
type DurableBackend struct {
	recordBackend
}

// NewDurableBackend creates the cache-plus-durable-store backend. The
// loader is typically a record.Mirror.
func NewDurableBackend(codec *securecookie.Codec, loader record.Loader) *DurableBackend {
	return &DurableBackend{recordBackend{codec: codec, loader: loader, kind: KindDurable}}
}

// CacheBackend stores payloads solely in the cache. Evicted sessions simply
// come back new; that is the product trade-off, not an error.
type CacheBackend struct {
	recordBackend
}

// NewCacheBackend creates the cache-only backend. The loader is typically a
// record.CacheStore.
func NewCacheBackend(codec *securecookie.Codec, loader record.Loader) *CacheBackend {
	return &CacheBackend{recordBackend{codec: codec, loader: loader, kind: KindCache}}
}

func (b *recordBackend) Fetch(ctx context.Context, r *http.Request, name string) (*Session, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return b.fresh(name)
	}

	values := b.codec.Decode(c.Value)
	sid, _ := values[sidKey].(string)
	if !ValidSID(sid) {
		// Unsigned, tampered or malformed ids never reach the store.
		return b.fresh(name)
	}

	rec, err := b.loader.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return b.fresh(name)
		}
		return nil, err
	}

	s := newSession(name, b.kind, sid)
	s.values = rec.Payload
	s.createdAt = rec.CreatedAt
	s.isNew = false
	return s, nil
}

func (b *recordBackend) Save(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error {
	if s == nil {
		return ErrNilSession
	}
	if !s.dirty && !opts.Force {
		return nil
	}

	now := time.Now()
	rec := &record.Record{
		SID:       s.sid,
		Payload:   s.values,
		CreatedAt: s.createdAt,
		UpdatedAt: now,
	}
	if opts.TTL > 0 {
		rec.ExpiresAt = now.Add(opts.TTL)
	}

	if err := b.loader.Put(ctx, rec); err != nil {
		return err
	}

	// The client only needs a new cookie when it does not hold this sid yet.
	if s.isNew {
		token, err := b.codec.Encode(map[string]any{sidKey: s.sid})
		if err != nil {
			return err
		}
		setCookie(w, s.name, token, opts)
	}

	return nil
}

func (b *recordBackend) Delete(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error {
	if s == nil {
		return ErrNilSession
	}

	s.values = make(map[string]any)
	deleteCookie(w, s.name, opts)

	if s.sid == "" {
		return nil
	}
	if err := b.loader.Delete(ctx, s.sid); err != nil && !errors.Is(err, record.ErrNotFound) {
		return err
	}
	return nil
}

func (b *recordBackend) fresh(name string) (*Session, error) {
	sid, err := GenerateSID()
	if err != nil {
		return nil, err
	}
	return newSession(name, b.kind, sid), nil
}
