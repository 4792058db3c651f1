package session

import (
	"context"
	"net/http"
	"time"
)

// Backend is the three-operation contract every session variant satisfies,
// so the per-request store can treat them interchangeably.
type Backend interface {
	// Fetch loads the session carried by the request's named cookie, or
	// returns a fresh session marked new when the cookie is missing or
	// invalid. Invalid never surfaces as an error.
	Fetch(ctx context.Context, r *http.Request, name string) (*Session, error)

	// Save persists the session and issues whatever cookie the client
	// needs. Clean sessions are skipped unless opts.Force is set.
	Save(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error

	// Delete removes the backing state and marks the cookie for removal.
	Delete(ctx context.Context, w http.ResponseWriter, s *Session, opts Options) error
}

// Options control how a tracked cookie or session is written at commit
// time. Zero values inherit nothing; merge over manager defaults happens
// when a call-site option list is applied.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite

	// TTL bounds the payload's lifetime: the embedded expiry of a cookie
	// session, or the record expiry of a stored one. Zero means no expiry.
	TTL time.Duration

	// Force persists even when the session is clean.
	Force bool
}

func setCookie(w http.ResponseWriter, name, value string, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: opts.HttpOnly,
		SameSite: opts.SameSite,
	})
}

func deleteCookie(w http.ResponseWriter, name string, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   opts.Secure,
		HttpOnly: opts.HttpOnly,
		SameSite: opts.SameSite,
	})
}
