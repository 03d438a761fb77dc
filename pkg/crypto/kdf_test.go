// pkg/crypto/kdf_test.go

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	key1, err := DeriveKey("correct-horse", salt)
	require.NoError(t, err)
	key2, err := DeriveKey("correct-horse", salt)
	require.NoError(t, err)

	assert.Equal(t, key1, key2, "same passphrase and salt must derive identical keys")
	assert.Len(t, key1, KeySize)
}

func TestDeriveKeyDistinguishesInputs(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	salt2, err := GenerateSalt()
	require.NoError(t, err)

	base, err := DeriveKey("passphrase", salt1)
	require.NoError(t, err)

	otherPass, err := DeriveKey("passphrase2", salt1)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherPass)

	otherSalt, err := DeriveKey("passphrase", salt2)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherSalt)
}

func TestDeriveKeyRejectsBadInputs(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	_, err = DeriveKey("", salt)
	assert.Error(t, err, "empty passphrase must be rejected")

	_, err = DeriveKey("passphrase", []byte("short"))
	assert.Error(t, err, "undersized salt must be rejected")
}

func TestVerificationHash(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	hash, err := VerificationHash("correct-horse", salt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "scrypt:"), "hash must carry the scheme prefix")

	// The verification value must not equal (or contain) the encryption key.
	key, err := DeriveKey("correct-horse", salt)
	require.NoError(t, err)
	assert.NotContains(t, hash, string(key))
}

func TestVerifyPassphrase(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	hash, err := VerificationHash("correct-horse", salt)
	require.NoError(t, err)

	ok, err := VerifyPassphrase("correct-horse", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassphrase("wrong-horse", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassphrase("correct-horse", salt, "bcrypt:whatever")
	assert.Error(t, err, "unknown scheme must be rejected, not silently mismatched")
}

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	salt2, err := GenerateSalt()
	require.NoError(t, err)

	assert.Len(t, salt1, SaltSize)
	assert.NotEqual(t, salt1, salt2, "salts must be random")
}

func TestSecureZero(t *testing.T) {
	b := []byte("sensitive")
	SecureZero(b)
	for i, v := range b {
		assert.Zerof(t, v, "byte %d not zeroed", i)
	}
}
