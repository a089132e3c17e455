package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestPassphraseRoundTrip(t *testing.T) {
	hash, err := HashPassphrase("hunter2", testParams)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassphrase("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassphrase("hunter3", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassphraseSalted(t *testing.T) {
	a, err := HashPassphrase("same", testParams)
	require.NoError(t, err)
	b, err := HashPassphrase("same", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=1$m=1,t=1,p=1$AA$AA"} {
		_, err := VerifyPassphrase("x", bad)
		assert.Error(t, err, bad)
	}
}

func TestResumeToken(t *testing.T) {
	require.NoError(t, Init(time.Hour))

	tok, err := CreateResumeToken("0b8c", "dungeon", "alice")
	require.NoError(t, err)

	claims, err := ParseResumeToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "dungeon", claims.Session)
	assert.Equal(t, "0b8c", claims.ID)
	require.NotNil(t, claims.ExpiresAt)
}

func TestResumeTokenRejectsOtherKey(t *testing.T) {
	require.NoError(t, Init(0))
	tok, err := CreateResumeToken("id", "dungeon", "alice")
	require.NoError(t, err)

	require.NoError(t, Init(0))
	_, err = ParseResumeToken(tok)
	assert.Error(t, err)
}

func TestResumeTokenExpired(t *testing.T) {
	require.NoError(t, Init(-time.Minute))
	tok, err := CreateResumeToken("id", "dungeon", "alice")
	require.NoError(t, err)
	_, err = ParseResumeToken(tok)
	assert.Error(t, err)
}
