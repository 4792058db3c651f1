package session

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/securecookie"
)

// CookieBackend keeps the whole session payload in the signed cookie
// itself. Nothing is stored server-side, so there is no session id.
type CookieBackend struct {
	codec *securecookie.Codec
}

// NewCookieBackend creates the signed-cookie-only backend.
func NewCookieBackend(codec *securecookie.Codec) *CookieBackend {
	return &CookieBackend{codec: codec}
}

func (b *CookieBackend) Fetch(ctx context.Context, r *http.Request, name string) (*Session, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return newSession(name, KindCookie, ""), nil
	}

	values := b.codec.Decode(c.Value)
	if len(values) == 0 {
		// Missing, tampered and expired all look the same: a fresh session.
		return newSession(name, KindCookie, ""), nil
	}

	s := newSession(name, KindCookie, "")
	s.values = values
	s.isNew = false
	return s, nil
}

func (b *CookieBackend) Save(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error {
	if s == nil {
		return ErrNilSession
	}
	if !s.dirty && !opts.Force {
		return nil
	}

	var (
		token string
		err   error
	)
	if opts.TTL > 0 {
		token, err = b.codec.EncodeWithTTL(s.values, opts.TTL)
	} else {
		token, err = b.codec.Encode(s.values)
	}
	if err != nil {
		return err
	}

	setCookie(w, s.name, token, opts)
	return nil
}

func (b *CookieBackend) Delete(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error {
	if s == nil {
		return ErrNilSession
	}

	s.values = make(map[string]any)
	deleteCookie(w, s.name, opts)
	return nil
}
