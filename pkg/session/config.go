package session

import (
	"net/http"
	"strings"
	"time"
)

// Config holds session configuration. The secret has no default on
// purpose: a process without one must fail at startup, not limp along
// issuing unverifiable cookies.
type Config struct {
	// Secrets is a comma-separated list of signing secrets; the first one
	// signs, all verify (key rotation).
	Secrets string `env:"SESSION_SECRETS,required"`

	// CookieName is the default session cookie name.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// FlashKey is the payload key of the default flash channel.
	FlashKey string `env:"SESSION_FLASH_KEY" envDefault:"_flash"`

	// Backend selects the default variant: cookie, durable or cache.
	Backend string `env:"SESSION_BACKEND" envDefault:"cookie"`

	// TTL bounds a session's lifetime. Zero disables expiry.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// EncryptCookies seals cookie payloads with AES-GCM in addition to
	// signing them.
	EncryptCookies bool `env:"SESSION_ENCRYPT_COOKIES" envDefault:"false"`

	// CacheNamespace prefixes this subsystem's cache keys.
	CacheNamespace string `env:"SESSION_CACHE_NAMESPACE" envDefault:"sessionkit:"`

	// CacheTTL caps how stale a cache mirror entry may get.
	CacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"10m"`

	// RetryAttempts and RetryBaseInterval shape the exponential backoff on
	// durable-store writes.
	RetryAttempts     uint64        `env:"SESSION_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBaseInterval time.Duration `env:"SESSION_RETRY_BASE_INTERVAL" envDefault:"100ms"`

	CookiePath     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain   string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	CookieMaxAge   int           `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode
}

// DefaultConfig returns the defaults applied when fields are unset. The
// secret stays empty: it must come from the caller.
func DefaultConfig() Config {
	return Config{
		CookieName:        "sid",
		FlashKey:          "_flash",
		Backend:           string(KindCookie),
		TTL:               720 * time.Hour,
		CacheNamespace:    "sessionkit:",
		CacheTTL:          10 * time.Minute,
		RetryAttempts:     3,
		RetryBaseInterval: 100 * time.Millisecond,
		CookiePath:        "/",
		CookieHTTPOnly:    true,
		CookieSameSite:    http.SameSiteLaxMode,
	}
}

// parseSecrets splits the comma-separated secret list, dropping blanks.
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// cookieOptions translates the config's cookie attributes into the
// store-wide default Options.
func (c Config) cookieOptions() Options {
	return Options{
		Path:     c.CookiePath,
		Domain:   c.CookieDomain,
		MaxAge:   c.CookieMaxAge,
		Secure:   c.CookieSecure,
		HttpOnly: c.CookieHTTPOnly,
		SameSite: c.CookieSameSite,
		TTL:      c.TTL,
	}
}
