// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func b64(b []byte) string {
	return base64.RawStdEncoding.EncodeToString(b)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong horse battery", hash)
	require.NoError(t, err)
	require.False(t, ok)

	other, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEqual(t, hash, other)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb", "$argon2id$v=1$m=1,t=1,p=1$aa$bb"} {
		_, err := VerifyPassword("x", bad)
		require.ErrorIs(t, err, ErrBadPasswordHash, bad)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	ok, upgraded, err := CheckPassword("correct horse battery", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, upgraded)

	ok, _, err = CheckPassword("correct horse battery", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckPasswordUpgradesWeakParams(t *testing.T) {
	weak := argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}
	salt := []byte("0123456789abcdef")
	encoded := "$argon2id$v=19$m=8192,t=1,p=1$" +
		b64(salt) + "$" + b64(weak.derive("pw-12345678", salt))

	ok, upgraded, err := CheckPassword("pw-12345678", encoded)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(upgraded, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err = VerifyPassword("pw-12345678", upgraded)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRefreshTokens(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
	require.Len(t, HashToken(a), 64)
	require.Equal(t, HashToken(a), HashToken(a))
}
