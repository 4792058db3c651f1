// Package securecookie encodes string-keyed mappings into tamper-evident
// HTTP cookie values and back.
//
// A Codec is initialised with one or more secret keys. The first secret
// signs (and, with WithEncryption, encrypts) outgoing tokens; every secret
// is tried when verifying incoming ones, so keys can be rotated without
// invalidating live cookies.
//
// # Wire format
//
// A token is
//
//	base64url(signature) + "." + base64url(payload)
//
// where signature is HMAC-SHA256 over the payload bytes and payload is the
// JSON serialization of the mapping, optionally sealed with AES-256-GCM
// (nonce-prefixed) before signing. An expiry deadline can be embedded in the
// payload via EncodeWithTTL; because it lives inside the signed bytes it
// cannot be extended by the client.
//
// # Failure policy
//
// Decode never returns an error. A token that is malformed, truncated,
// carries a bad signature, fails decryption or has expired decodes to an
// empty map — exactly the result of no cookie having been sent. This is
// deliberate: the verification path is attacker-reachable, and the reason a
// token was rejected must not leak. Programmer errors (nil mapping passed to
// Encode, missing or short secrets) are surfaced loudly instead.
//
// # Usage
//
//	codec, err := securecookie.New([]string{os.Getenv("SESSION_SECRET")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, _ := codec.Encode(map[string]any{"uid": "42"})
//	values := codec.Decode(token) // {"uid": "42"}
//
// SignedCookie wraps a decoded mapping with "new" and "dirty" flags so
// higher layers can skip re-issuing cookies that did not change.
package securecookie
