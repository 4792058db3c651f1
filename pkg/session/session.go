package session

import (
	"maps"
	"time"
)

// Session is a unit of server-held state scoped to one client. It tracks
// whether its payload changed since load; a clean session is never
// re-persisted.
type Session struct {
	sid       string
	name      string
	kind      Kind
	values    map[string]any
	createdAt time.Time
	isNew     bool
	dirty     bool
	destroyed bool
}

func newSession(name string, kind Kind, sid string) *Session {
	return &Session{
		sid:       sid,
		name:      name,
		kind:      kind,
		values:    make(map[string]any),
		createdAt: time.Now(),
		isNew:     true,
	}
}

// SID returns the session id. Cookie-backed sessions have none.
func (s *Session) SID() string { return s.sid }

// Name returns the cookie name the session is bound to.
func (s *Session) Name() string { return s.name }

// Kind returns the backend kind that produced the session.
func (s *Session) Kind() Kind { return s.kind }

// IsNew reports whether the session was created this request rather than
// loaded from a valid cookie.
func (s *Session) IsNew() bool { return s.isNew }

// IsDirty reports whether the payload changed since load.
func (s *Session) IsDirty() bool { return s.dirty }

// Len returns the number of payload keys.
func (s *Session) Len() int { return len(s.values) }

// Get retrieves a value from the payload.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString retrieves a string value.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.values[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt retrieves an integer value. Payloads cross JSON and msgpack
// codecs, so every numeric width they may hand back is accepted.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value.
func (s *Session) GetBool(key string) (bool, bool) {
	v, ok := s.values[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key string, value any) {
	s.values[key] = value
	s.dirty = true
}

// Delete removes a key. The session is marked dirty only if the key
// existed.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// Clear removes all payload keys and marks the session dirty.
func (s *Session) Clear() {
	if len(s.values) == 0 {
		return
	}
	s.values = make(map[string]any)
	s.dirty = true
}

// Touch marks the session dirty without changing its payload, so commit
// re-persists it and refreshes its expiry.
func (s *Session) Touch() {
	s.dirty = true
}

// Destroy clears the payload and marks the session for removal: at commit
// the backing record and cookie are deleted instead of saved.
func (s *Session) Destroy() {
	s.values = make(map[string]any)
	s.dirty = true
	s.destroyed = true
}

// Values returns a copy of the payload.
func (s *Session) Values() map[string]any {
	cp := make(map[string]any, len(s.values))
	maps.Copy(cp, s.values)
	return cp
}
