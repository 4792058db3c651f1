package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestGenerateSID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sid, err := session.GenerateSID()
		require.NoError(t, err)
		assert.Len(t, sid, 40)
		assert.True(t, session.ValidSID(sid))
		assert.False(t, seen[sid], "duplicate sid generated")
		seen[sid] = true
	}
}

func TestValidSID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sid   string
		valid bool
	}{
		{name: "valid", sid: "0123456789abcdef0123456789abcdef01234567", valid: true},
		{name: "empty", sid: "", valid: false},
		{name: "too short", sid: "abc123", valid: false},
		{name: "too long", sid: "0123456789abcdef0123456789abcdef012345678", valid: false},
		{name: "uppercase hex", sid: "0123456789ABCDEF0123456789ABCDEF01234567", valid: false},
		{name: "non-hex characters", sid: "0123456789abcdef0123456789abcdef0123456z", valid: false},
		{name: "path traversal attempt", sid: "../../../etc/passwd0123456789abcdef01234", valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, session.ValidSID(tt.sid))
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"cookie", "durable", "cache"} {
		kind, err := session.ParseKind(valid)
		assert.NoError(t, err)
		assert.Equal(t, session.Kind(valid), kind)
	}

	_, err := session.ParseKind("datastore")
	assert.ErrorIs(t, err, session.ErrUnknownBackend)

	_, err = session.ParseKind("")
	assert.ErrorIs(t, err, session.ErrUnknownBackend)
}

func TestSession_DirtyTracking(t *testing.T) {
	t.Parallel()

	mgr := newCookieManager(t)
	store := mgr.NewStore(newRequest(nil))

	sess, err := store.GetSession()
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	assert.False(t, sess.IsDirty())

	t.Run("touch marks dirty without payload change", func(t *testing.T) {
		sess.Touch()
		assert.True(t, sess.IsDirty())
		assert.Equal(t, 0, sess.Len())
	})

	t.Run("set marks dirty", func(t *testing.T) {
		sess.Set("k", "v")
		assert.True(t, sess.IsDirty())
	})

	t.Run("typed getters", func(t *testing.T) {
		sess.Set("s", "str")
		sess.Set("n", 42)
		sess.Set("f", 3.0)
		sess.Set("b", true)

		s, ok := sess.GetString("s")
		assert.True(t, ok)
		assert.Equal(t, "str", s)

		n, ok := sess.GetInt("n")
		assert.True(t, ok)
		assert.Equal(t, 42, n)

		f, ok := sess.GetInt("f")
		assert.True(t, ok)
		assert.Equal(t, 3, f)

		b, ok := sess.GetBool("b")
		assert.True(t, ok)
		assert.True(t, b)

		_, ok = sess.GetString("n")
		assert.False(t, ok)

		_, ok = sess.Get("absent")
		assert.False(t, ok)
	})
}

func TestSession_Values_Copy(t *testing.T) {
	t.Parallel()

	mgr := newCookieManager(t)
	store := mgr.NewStore(newRequest(nil))

	sess, err := store.GetSession()
	require.NoError(t, err)
	sess.Set("k", "v")

	values := sess.Values()
	values["k"] = "tampered"

	v, _ := sess.GetString("k")
	assert.Equal(t, "v", v)
}
