package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "admin123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_TruncatesAt72Bytes(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("p", MaxPasswordBytes)
	hash, err := HashPassword(prefix+"-original-tail", bcrypt.MinCost)
	require.NoError(t, err)

	for _, candidate := range []string{prefix, prefix + "x", prefix + strings.Repeat("z", 100)} {
		ok, err := VerifyPassword(hash, candidate)
		require.NoError(t, err)
		assert.True(t, ok, "passwords sharing the first 72 bytes must verify")
	}

	ok, err := VerifyPassword(hash, prefix[:MaxPasswordBytes-1])
	require.NoError(t, err)
	assert.False(t, ok, "71-byte prefix is a different password")
}

func TestVerifyPassword_TruncatesMultibyteByBytes(t *testing.T) {
	t.Parallel()

	// 24 three-byte runes = 72 bytes exactly.
	prefix := strings.Repeat("€", 24)
	hash, err := HashPassword(prefix, bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, prefix+"€€")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_MatchesExternallyProducedHash(t *testing.T) {
	t.Parallel()

	// Hash produced without any truncation helper, as other tools would.
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	// $2b$ prefixed hashes are accepted too.
	hash2b := append([]byte("$2b$"), hash[4:]...)

	for _, h := range [][]byte{hash, hash2b} {
		ok, err := VerifyPassword(h, "s3cret")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	for _, h := range [][]byte{nil, []byte("short"), []byte("$9z$10$abcdefghijklmnopqrstuuJ0xCOpxoUq7A3YVNN1Ihq2yN3N0r.bS")} {
		ok, err := VerifyPassword(h, "whatever")
		assert.False(t, ok)
		assert.True(t, errors.Is(err, ErrInvalidHash), "got %v", err)
	}
}

func TestNewDummyHash(t *testing.T) {
	t.Parallel()

	hash, err := NewDummyHash(bcrypt.MinCost)
	require.NoError(t, err)

	cost, err := HashCost(hash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := VerifyPassword(hash, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashCost_Invalid(t *testing.T) {
	t.Parallel()

	_, err := HashCost([]byte("nope"))
	assert.ErrorIs(t, err, ErrInvalidHash)
}
