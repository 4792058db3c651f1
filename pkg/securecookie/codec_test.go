package securecookie_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/securecookie"
)

const (
	testSecret  = "test-secret-key-that-is-32-chars-plus"
	otherSecret = "another-secret-key-that-is-long-enough"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{
			name:    "no secrets",
			secrets: []string{},
			wantErr: securecookie.ErrNoSecret,
		},
		{
			name:    "empty secrets",
			secrets: []string{"", ""},
			wantErr: securecookie.ErrNoSecret,
		},
		{
			name:    "secret too short",
			secrets: []string{"short"},
			wantErr: securecookie.ErrSecretTooShort,
		},
		{
			name:    "valid secret",
			secrets: []string{testSecret},
		},
		{
			name:    "mixed valid and empty",
			secrets: []string{"", testSecret},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			codec, err := securecookie.New(tt.secrets)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, codec)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, codec)
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	tests := []struct {
		name   string
		values map[string]any
	}{
		{
			name:   "empty map",
			values: map[string]any{},
		},
		{
			name:   "single string",
			values: map[string]any{"user": "alice"},
		},
		{
			name: "mixed values",
			values: map[string]any{
				"user":  "bob",
				"count": float64(3),
				"admin": true,
			},
		},
		{
			name: "nested map",
			values: map[string]any{
				"prefs": map[string]any{"theme": "dark"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := codec.Encode(tt.values)
			require.NoError(t, err)
			assert.Contains(t, token, ".")

			decoded := codec.Decode(token)
			assert.Equal(t, tt.values, decoded)
		})
	}
}

func TestCodec_Encode_NilValues(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	_, err = codec.Encode(nil)
	assert.ErrorIs(t, err, securecookie.ErrNilValues)

	_, err = codec.EncodeWithTTL(nil, time.Minute)
	assert.ErrorIs(t, err, securecookie.ErrNilValues)
}

func TestCodec_Decode_TamperDetection(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	token, err := codec.Encode(map[string]any{"user": "alice", "admin": false})
	require.NoError(t, err)

	// Flipping any single byte of the token must fail closed.
	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01
		assert.Empty(t, codec.Decode(string(tampered)), "byte %d", i)
	}
}

func TestCodec_Decode_Malformed(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	valid, err := codec.Encode(map[string]any{"k": "v"})
	require.NoError(t, err)
	sig, payload, _ := strings.Cut(valid, ".")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "no separator", token: "abcdef"},
		{name: "signature only", token: sig + "."},
		{name: "payload only", token: "." + payload},
		{name: "invalid base64 signature", token: "!!!." + payload},
		{name: "invalid base64 payload", token: sig + ".!!!"},
		{name: "truncated payload", token: sig + "." + payload[:len(payload)/2]},
		{name: "swapped parts", token: payload + "." + sig},
		{
			name:  "signature over non-json payload",
			token: sig + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decoded := codec.Decode(tt.token)
			assert.NotNil(t, decoded)
			assert.Empty(t, decoded)
		})
	}
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	t.Parallel()

	codec1, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)
	codec2, err := securecookie.New([]string{otherSecret})
	require.NoError(t, err)

	token, err := codec1.Encode(map[string]any{"user": "alice"})
	require.NoError(t, err)

	assert.Empty(t, codec2.Decode(token))
}

func TestCodec_SecretRotation(t *testing.T) {
	t.Parallel()

	oldCodec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	// New codec signs with the fresh secret but still verifies the old one.
	rotated, err := securecookie.New([]string{otherSecret, testSecret})
	require.NoError(t, err)

	token, err := oldCodec.Encode(map[string]any{"user": "alice"})
	require.NoError(t, err)

	decoded := rotated.Decode(token)
	assert.Equal(t, map[string]any{"user": "alice"}, decoded)
}

func TestCodec_Expiry(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret})
	require.NoError(t, err)

	t.Run("valid until deadline", func(t *testing.T) {
		t.Parallel()

		token, err := codec.EncodeWithTTL(map[string]any{"user": "alice"}, time.Hour)
		require.NoError(t, err)

		decoded := codec.Decode(token)
		assert.Equal(t, map[string]any{"user": "alice"}, decoded)
	})

	t.Run("expired token decodes to empty", func(t *testing.T) {
		t.Parallel()

		token, err := codec.EncodeWithTTL(map[string]any{"user": "alice"}, -time.Second)
		require.NoError(t, err)

		assert.Empty(t, codec.Decode(token))
	})

	t.Run("expiry claim is stripped on success", func(t *testing.T) {
		t.Parallel()

		token, err := codec.EncodeWithTTL(map[string]any{"user": "alice"}, time.Hour)
		require.NoError(t, err)

		decoded := codec.Decode(token)
		assert.NotContains(t, decoded, "_expires")
	})
}

func TestCodec_Encrypted(t *testing.T) {
	t.Parallel()

	codec, err := securecookie.New([]string{testSecret}, securecookie.WithEncryption())
	require.NoError(t, err)

	values := map[string]any{"user": "alice", "role": "admin"}
	token, err := codec.Encode(values)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, values, codec.Decode(token))
	})

	t.Run("payload is not readable", func(t *testing.T) {
		t.Parallel()

		_, payload, ok := strings.Cut(token, ".")
		require.True(t, ok)
		raw, err := base64.RawURLEncoding.DecodeString(payload)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "alice")
	})

	t.Run("plain codec rejects encrypted token", func(t *testing.T) {
		t.Parallel()

		plain, err := securecookie.New([]string{testSecret})
		require.NoError(t, err)
		assert.Empty(t, plain.Decode(token))
	})
}
