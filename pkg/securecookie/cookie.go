package securecookie

// SignedCookie is a mutable mapping backed by a signed cookie. It tracks
// whether it was loaded from a valid incoming token and whether it has been
// modified since, so callers can skip re-issuing unchanged cookies.
type SignedCookie struct {
	name   string
	values map[string]any
	isNew  bool
	dirty  bool
}

// NewSignedCookie returns a fresh, empty cookie marked as new.
func NewSignedCookie(name string) *SignedCookie {
	return &SignedCookie{
		name:   name,
		values: make(map[string]any),
		isNew:  true,
	}
}

// FromToken decodes an incoming token into a SignedCookie. An invalid or
// expired token yields a fresh cookie, exactly as if none had been sent.
func FromToken(name, token string, codec *Codec) *SignedCookie {
	values := codec.Decode(token)
	if len(values) == 0 {
		return NewSignedCookie(name)
	}
	return &SignedCookie{
		name:   name,
		values: values,
	}
}

// Name returns the cookie name this mapping is bound to.
func (c *SignedCookie) Name() string { return c.name }

// IsNew reports whether the cookie was constructed fresh rather than loaded
// from a valid incoming token.
func (c *SignedCookie) IsNew() bool { return c.isNew }

// IsDirty reports whether the mapping changed since it was loaded.
func (c *SignedCookie) IsDirty() bool { return c.dirty }

// Len returns the number of stored keys.
func (c *SignedCookie) Len() int { return len(c.values) }

// Get retrieves a value.
func (c *SignedCookie) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString retrieves a string value.
func (c *SignedCookie) GetString(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores a value and marks the cookie dirty.
func (c *SignedCookie) Set(key string, value any) {
	c.values[key] = value
	c.dirty = true
}

// Delete removes a key. The cookie is marked dirty only if the key existed.
func (c *SignedCookie) Delete(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	c.dirty = true
}

// Clear removes all keys and marks the cookie dirty.
func (c *SignedCookie) Clear() {
	if len(c.values) == 0 {
		return
	}
	c.values = make(map[string]any)
	c.dirty = true
}

// Values exposes the underlying mapping for encoding. The returned map is
// live; mutate it only through Set/Delete/Clear so dirtiness is tracked.
func (c *SignedCookie) Values() map[string]any { return c.values }
