package securecookie

import "errors"

var (
	ErrNoSecret       = errors.New("securecookie.no_secret")
	ErrSecretTooShort = errors.New("securecookie.secret_too_short")
	ErrNilValues      = errors.New("securecookie.nil_values")
	ErrEncodeFailed   = errors.New("securecookie.encode_failed")
)
