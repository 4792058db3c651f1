package session

import "fmt"

// Kind identifies a session backend. The set is closed: backends are
// resolved once at configuration time, never looked up dynamically by
// arbitrary strings.
type Kind string

const (
	// KindCookie keeps the whole payload in a signed cookie.
	KindCookie Kind = "cookie"

	// KindDurable keeps the payload in a cache-mirrored durable store, with
	// only the session id in a signed cookie.
	KindDurable Kind = "durable"

	// KindCache keeps the payload solely in the cache; sessions may be
	// evicted silently.
	KindCache Kind = "cache"
)

// ParseKind maps a configuration string onto the closed Kind set.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCookie, KindDurable, KindCache:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}
