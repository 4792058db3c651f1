package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/record"
)

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithDurableStore wires the loader behind the durable backend, typically a
// record.Mirror.
func WithDurableStore(loader record.Loader) Option {
	return func(m *Manager) {
		m.durableLoader = loader
	}
}

// WithCacheStore wires the loader behind the cache-only backend, typically
// a record.CacheStore.
func WithCacheStore(loader record.Loader) Option {
	return func(m *Manager) {
		m.cacheLoader = loader
	}
}

// WithLogger sets the logger used by the middleware and commit path.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// StoreOption adjusts a single store call: which cookie it addresses, which
// backend serves it and how the resulting cookie is written.
type StoreOption func(*callConfig)

type callConfig struct {
	name    string
	kind    Kind
	kindSet bool
	noLoad  bool
	opts    Options
}

// WithName addresses a cookie other than the configured default.
func WithName(name string) StoreOption {
	return func(c *callConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithKind serves this call with a specific backend variant instead of the
// configured default.
func WithKind(kind Kind) StoreOption {
	return func(c *callConfig) {
		c.kind = kind
		c.kindSet = true
	}
}

// WithoutLoad skips decoding the incoming cookie and starts fresh. Only
// meaningful for GetSecureCookie.
func WithoutLoad() StoreOption {
	return func(c *callConfig) {
		c.noLoad = true
	}
}

// WithForce persists the entry at commit even if it is clean.
func WithForce() StoreOption {
	return func(c *callConfig) {
		c.opts.Force = true
	}
}

// WithTTL overrides the configured session lifetime for this entry.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *callConfig) {
		c.opts.TTL = ttl
	}
}

// WithPath overrides the cookie path.
func WithPath(path string) StoreOption {
	return func(c *callConfig) {
		c.opts.Path = path
	}
}

// WithDomain overrides the cookie domain.
func WithDomain(domain string) StoreOption {
	return func(c *callConfig) {
		c.opts.Domain = domain
	}
}

// WithMaxAge overrides the cookie max-age in seconds.
func WithMaxAge(seconds int) StoreOption {
	return func(c *callConfig) {
		c.opts.MaxAge = seconds
	}
}

// WithSecure overrides the Secure cookie attribute.
func WithSecure(secure bool) StoreOption {
	return func(c *callConfig) {
		c.opts.Secure = secure
	}
}

// WithHTTPOnly overrides the HttpOnly cookie attribute.
func WithHTTPOnly(httpOnly bool) StoreOption {
	return func(c *callConfig) {
		c.opts.HttpOnly = httpOnly
	}
}

// WithSameSite overrides the SameSite cookie attribute.
func WithSameSite(sameSite http.SameSite) StoreOption {
	return func(c *callConfig) {
		c.opts.SameSite = sameSite
	}
}
