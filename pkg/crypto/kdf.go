// pkg/crypto/kdf.go

package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/crypto/scrypt"
)

// Scrypt cost parameters, sized for interactive use. Frozen: changing any
// of them makes existing vaults unopenable, so a new scheme needs a new
// verification-hash prefix and a version bump instead.
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 1

	// KeySize is the derived symmetric key length (ChaCha20-Poly1305).
	KeySize = 32

	// SaltSize is the vault salt length, generated once per vault.
	SaltSize = 32

	// verificationScheme tags stored verification hashes so a future KDF
	// migration can tell old hashes apart.
	verificationScheme = "scrypt:"
)

// DeriveKey derives the vault's symmetric encryption key from a passphrase
// and the vault salt. Deterministic for a given (passphrase, salt) pair.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, cerr.New("passphrase cannot be empty")
	}
	if len(salt) < 16 {
		return nil, cerr.Newf("salt must be at least 16 bytes (got %d)", len(salt))
	}

	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, cerr.Wrap(err, "scrypt key derivation failed")
	}
	return key, nil
}

// VerificationHash derives the stored passphrase verification value. It is
// computed from the same (passphrase, salt) pair as the encryption key but
// over a domain-separated salt, so the stored value never exposes the key
// itself. The result carries a scheme prefix, e.g. "scrypt:<base64>".
func VerificationHash(passphrase string, salt []byte) (string, error) {
	if passphrase == "" {
		return "", cerr.New("passphrase cannot be empty")
	}
	if len(salt) < 16 {
		return "", cerr.Newf("salt must be at least 16 bytes (got %d)", len(salt))
	}

	verifySalt := append([]byte("verify:"), salt...)
	sum, err := scrypt.Key([]byte(passphrase), verifySalt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return "", cerr.Wrap(err, "scrypt verification derivation failed")
	}
	return verificationScheme + base64.StdEncoding.EncodeToString(sum), nil
}

// VerifyPassphrase recomputes the verification value for the supplied
// passphrase and compares it to the stored one in constant time.
func VerifyPassphrase(passphrase string, salt []byte, stored string) (bool, error) {
	if !strings.HasPrefix(stored, verificationScheme) {
		return false, cerr.Newf("unknown verification scheme in %q", firstToken(stored))
	}

	computed, err := VerificationHash(passphrase, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1, nil
}

// GenerateSalt produces a fresh random vault salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, cerr.Wrap(err, "failed to generate salt")
	}
	return salt, nil
}

// SecureZero overwrites a byte slice to reduce the chance of sensitive
// data lingering in memory.
func SecureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// firstToken keeps error messages from echoing a whole stored hash.
func firstToken(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i+1]
	}
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
