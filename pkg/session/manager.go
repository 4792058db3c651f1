package session

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/record"
	"github.com/dmitrymomot/sessionkit/pkg/securecookie"
)

// Manager holds the long-lived pieces of the subsystem: codec, backends and
// defaults. It is safe for concurrent use by independent requests; all
// per-request mutable state lives in the Store it hands out.
type Manager struct {
	codec       *securecookie.Codec
	config      Config
	backends    map[Kind]Backend
	defaultKind Kind
	defaults    Options
	log         *slog.Logger

	durableLoader record.Loader
	cacheLoader   record.Loader
}

// New creates a Manager from cfg. Construction fails when the secret is
// missing or too short, when cfg.Backend names an unknown variant, or when
// the selected variant has no store wired in — configuration mistakes
// surface at startup, not under traffic.
func New(cfg Config, opts ...Option) (*Manager, error) {
	var codecOpts []securecookie.CodecOption
	if cfg.EncryptCookies {
		codecOpts = append(codecOpts, securecookie.WithEncryption())
	}

	codec, err := securecookie.New(cfg.parseSecrets(), codecOpts...)
	if err != nil {
		return nil, err
	}

	defaultKind, err := ParseKind(cfg.Backend)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		codec:       codec,
		config:      cfg,
		defaultKind: defaultKind,
		defaults:    cfg.cookieOptions(),
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.backends = map[Kind]Backend{
		KindCookie: NewCookieBackend(codec),
	}
	if m.durableLoader != nil {
		m.backends[KindDurable] = NewDurableBackend(codec, m.durableLoader)
	}
	if m.cacheLoader != nil {
		m.backends[KindCache] = NewCacheBackend(codec, m.cacheLoader)
	}

	if _, ok := m.backends[m.defaultKind]; !ok {
		return nil, ErrBackendNotConfigured
	}

	return m, nil
}

// Codec exposes the cookie codec for callers that sign small blobs outside
// session semantics.
func (m *Manager) Codec() *securecookie.Codec { return m.codec }

// NewStore creates the per-request façade bound to r. One store exists per
// in-flight request and is discarded when the request ends.
func (m *Manager) NewStore(r *http.Request) *Store {
	return &Store{
		mgr:     m,
		req:     r,
		pending: make(map[string]*pendingEntry),
	}
}

// backend resolves a Kind against the configured set.
func (m *Manager) backend(kind Kind) (Backend, error) {
	b, ok := m.backends[kind]
	if !ok {
		return nil, ErrBackendNotConfigured
	}
	return b, nil
}

// callConfig seeds a per-call configuration with the manager defaults.
func (m *Manager) callConfig(opts []StoreOption) callConfig {
	cc := callConfig{
		name: m.config.CookieName,
		kind: m.defaultKind,
		opts: m.defaults,
	}
	for _, opt := range opts {
		opt(&cc)
	}
	return cc
}
