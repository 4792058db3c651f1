package securecookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

const (
	minSecretLength = 32

	// expiresKey carries the token's expiry inside the signed payload so the
	// deadline itself is covered by the signature.
	expiresKey = "_expires"
)

// Codec encodes a string-keyed mapping into a tamper-evident cookie value
// and back. The wire format is
//
//	base64url(signature) + "." + base64url(payload)
//
// where signature is an HMAC-SHA256 over the payload bytes. With encryption
// enabled the payload is sealed with AES-256-GCM before signing.
type Codec struct {
	secrets []string
	encrypt bool
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithEncryption seals the payload with AES-256-GCM so clients cannot read
// the values they carry. Tampering is still detected by the outer signature.
func WithEncryption() CodecOption {
	return func(c *Codec) {
		c.encrypt = true
	}
}

// New creates a Codec. The first secret signs and encrypts; all secrets
// verify and decrypt, so old cookies remain valid while keys rotate.
func New(secrets []string, opts ...CodecOption) (*Codec, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	c := &Codec{secrets: secrets}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Encode serializes values into a signed token. A nil map is a programmer
// error and is rejected loudly; an empty map is fine.
func (c *Codec) Encode(values map[string]any) (string, error) {
	if values == nil {
		return "", ErrNilValues
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return "", errors.Join(ErrEncodeFailed, err)
	}

	if c.encrypt {
		payload, err = c.seal(payload)
		if err != nil {
			return "", errors.Join(ErrEncodeFailed, err)
		}
	}

	sig := c.sign(payload, c.secrets[0])
	return base64.RawURLEncoding.EncodeToString(sig) + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

// EncodeWithTTL is Encode with an expiry claim embedded in the payload.
// Decode treats tokens past the deadline as absent.
func (c *Codec) EncodeWithTTL(values map[string]any, ttl time.Duration) (string, error) {
	if values == nil {
		return "", ErrNilValues
	}

	withExpiry := make(map[string]any, len(values)+1)
	for k, v := range values {
		withExpiry[k] = v
	}
	withExpiry[expiresKey] = time.Now().Add(ttl).Unix()

	return c.Encode(withExpiry)
}

// Decode verifies and deserializes a token. It fails closed: a malformed,
// tampered, expired or otherwise unverifiable token yields an empty map,
// indistinguishable from no cookie having been sent. Callers never learn
// why validation failed.
func (c *Codec) Decode(token string) map[string]any {
	sigPart, payloadPart, ok := strings.Cut(token, ".")
	if !ok {
		return map[string]any{}
	}

	// Strict decoding rejects non-canonical trailing bits, so no two distinct
	// tokens decode to the same signed bytes.
	sig, err := base64.RawURLEncoding.Strict().DecodeString(sigPart)
	if err != nil {
		return map[string]any{}
	}
	payload, err := base64.RawURLEncoding.Strict().DecodeString(payloadPart)
	if err != nil {
		return map[string]any{}
	}

	// Try all secrets so cookies signed before a key rotation still verify.
	verified := false
	for _, secret := range c.secrets {
		expected := c.sign(payload, secret)
		if subtle.ConstantTimeCompare(sig, expected) == 1 {
			verified = true
			break
		}
	}
	if !verified {
		return map[string]any{}
	}

	if c.encrypt {
		payload, err = c.open(payload)
		if err != nil {
			return map[string]any{}
		}
	}

	var values map[string]any
	if err := json.Unmarshal(payload, &values); err != nil || values == nil {
		return map[string]any{}
	}

	if raw, ok := values[expiresKey]; ok {
		exp, ok := raw.(float64)
		if !ok || time.Now().Unix() > int64(exp) {
			return map[string]any{}
		}
		delete(values, expiresKey)
	}

	return values
}

func (c *Codec) sign(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

func (c *Codec) seal(plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(c.secrets[0])
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Nonce is prepended so the token is self-contained.
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Codec) open(ciphertext []byte) ([]byte, error) {
	var lastErr error
	for _, secret := range c.secrets {
		gcm, err := newGCM(secret)
		if err != nil {
			lastErr = err
			continue
		}

		if len(ciphertext) < gcm.NonceSize() {
			lastErr = errors.New("ciphertext shorter than nonce")
			continue
		}

		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		plaintext, err := gcm.Open(nil, nonce, sealed, nil)
		if err == nil {
			return plaintext, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func newGCM(secret string) (cipher.AEAD, error) {
	// AES-256 requires exactly 32 key bytes.
	block, err := aes.NewCipher([]byte(secret[:32]))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
