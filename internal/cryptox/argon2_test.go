package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
func newTestHasher(t *testing.T) *Argon2Hasher {
	t.Helper()
	h, err := NewArgon2Hasher(Params{MemoryKiB: 8 * 1024, Time: 1, Threads: 1, KeyLength: 16})
	require.NoError(t, err)
	return h
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestHashVerify_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	for _, p := range []string{"longpassword1", "s3cr3t", "", "пароль-ünïcode", strings.Repeat("x", 512)} {
		hashed, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hashed)
		assert.True(t, strings.HasPrefix(hashed, "$argon2id$v=19$m=8192,t=1,p=1$"))

		ok, err := h.Verify(hashed, p)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", p)

		ok, err = h.Verify(hashed, p+"x")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestHash_RandomSalt(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-input")
	require.NoError(t, err)
	b, err := h.Hash("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	for _, hashed := range []string{a, b} {
		ok, err := h.Verify(hashed, "same-input")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHash_RandError(t *testing.T) {
	h := newTestHasher(t)
	h.rand = failingReader{}

	_, err := h.Hash("x")
	require.ErrorIs(t, err, ErrProcessing)
}

func TestVerify_ParamsTravelWithHash(t *testing.T) {
	old := newTestHasher(t)
	hashed, err := old.Hash("rotate-me")
	require.NoError(t, err)

	stronger, err := NewArgon2Hasher(Params{MemoryKiB: 16 * 1024, Time: 2, Threads: 2, KeyLength: 32})
	require.NoError(t, err)

	ok, err := stronger.Verify(hashed, "rotate-me")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	h := newTestHasher(t)

	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=0$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	} {
		ok, err := h.Verify(bad, "anything")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrVerification, "input %q", bad)
	}
}

func TestNewArgon2Hasher_Validation(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"memory", Params{MemoryKiB: 1024, Time: 1, Threads: 1, KeyLength: 32}},
		{"time", Params{MemoryKiB: 8192, Time: 0, Threads: 1, KeyLength: 32}},
		{"threads", Params{MemoryKiB: 8192, Time: 1, Threads: 0, KeyLength: 32}},
		{"key length", Params{MemoryKiB: 8192, Time: 1, Threads: 1, KeyLength: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArgon2Hasher(tt.p)
			assert.Error(t, err)
		})
	}

	_, err := NewArgon2Hasher(DefaultParams())
	assert.NoError(t, err)
}
