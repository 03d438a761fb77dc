// pkg/crypto/seal.go

package crypto

import (
	"crypto/rand"
	"io"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/serentry/dbvault/pkg/dberr"
)

// Encrypt seals plaintext under key with ChaCha20-Poly1305 and a fresh
// random nonce. The nonce is returned alongside the ciphertext; the pair
// must be stored and presented together. Nonces are never reused.
func Encrypt(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, cerr.Wrap(err, "failed to create cipher")
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, cerr.Wrap(err, "failed to generate nonce")
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens a ciphertext/nonce pair produced by Encrypt. Integrity
// failures (tampered ciphertext, wrong key, mismatched nonce) surface as
// dberr.ErrDecryptionFailed, never as silently wrong plaintext.
func Decrypt(key, ciphertext, nonce []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create cipher")
	}

	if len(nonce) != aead.NonceSize() {
		return nil, cerr.WithDetail(dberr.ErrDecryptionFailed, "invalid nonce length")
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, dberr.ErrDecryptionFailed
	}
	return plaintext, nil
}
