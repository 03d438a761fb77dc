// pkg/crypto/seal_test.go

package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serentry/dbvault/pkg/dberr"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "simple", plaintext: []byte("hello vault")},
		{name: "empty", plaintext: []byte{}},
		{name: "json credentials", plaintext: []byte(`{"username":"u","password":"p"}`)},
		{name: "non-utf8", plaintext: []byte{0x00, 0xff, 0xfe, 0x80, 0x01}},
		{name: "large", plaintext: make([]byte, 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, nonce, err := Encrypt(key, tt.plaintext)
			require.NoError(t, err)
			require.Len(t, nonce, 12)

			got, err := Decrypt(key, ciphertext, nonce)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestEncryptUsesFreshNonces(t *testing.T) {
	key := testKey(t)

	_, nonce1, err := Encrypt(key, []byte("data"))
	require.NoError(t, err)
	_, nonce2, err := Encrypt(key, []byte("data"))
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2, "every encryption must draw a fresh nonce")
}

func TestDecryptTamperSensitivity(t *testing.T) {
	key := testKey(t)
	ciphertext, nonce, err := Encrypt(key, []byte("secret connection string"))
	require.NoError(t, err)

	// Flipping any single bit of the ciphertext must fail loudly.
	for i := range ciphertext {
		tampered := make([]byte, len(ciphertext))
		copy(tampered, ciphertext)
		tampered[i] ^= 0x01

		_, err := Decrypt(key, tampered, nonce)
		assert.ErrorIsf(t, err, dberr.ErrDecryptionFailed, "byte %d", i)
	}

	// Same for the nonce.
	for i := range nonce {
		tampered := make([]byte, len(nonce))
		copy(tampered, nonce)
		tampered[i] ^= 0x01

		_, err := Decrypt(key, ciphertext, tampered)
		assert.ErrorIsf(t, err, dberr.ErrDecryptionFailed, "nonce byte %d", i)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	ciphertext, nonce, err := Encrypt(testKey(t), []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(testKey(t), ciphertext, nonce)
	assert.ErrorIs(t, err, dberr.ErrDecryptionFailed)
}

func TestDecryptBadNonceLength(t *testing.T) {
	key := testKey(t)
	ciphertext, _, err := Encrypt(key, []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(key, ciphertext, []byte("short"))
	assert.ErrorIs(t, err, dberr.ErrDecryptionFailed)
}
