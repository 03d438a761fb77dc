// pkg/vault/vault.go

// Package vault owns the persisted, passphrase-protected store of
// database records. A Vault handle is a live authenticated session: the
// scrypt-derived key lives only in memory, every secret field is sealed
// independently with ChaCha20-Poly1305, and the whole file is rewritten
// atomically after each mutation.
package vault

import (
	"fmt"
	"os"
	"sync"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/crypto"
	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/vaultctx"
	"github.com/serentry/dbvault/pkg/xdg"
)

// SchemaVersion is written into every vault file. Reserved for future
// migrations, not used for concurrency control.
const SchemaVersion = 1

// Record is one named database's encrypted metadata. Each blob and its
// nonce are written and read strictly as a pair.
type Record struct {
	Name                      string          `json:"name"`
	DBType                    database.DBType `json:"db_type"`
	ContainerID               string          `json:"container_id"`
	EncryptedCredentials      []byte          `json:"encrypted_credentials"`
	Nonce                     []byte          `json:"nonce"`
	EncryptedConnectionString []byte          `json:"encrypted_connection_string"`
	ConnectionNonce           []byte          `json:"connection_nonce"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// file is the persisted document.
type file struct {
	PassphraseHash string            `json:"passphrase_hash"`
	Salt           []byte            `json:"salt"`
	Version        int               `json:"version"`
	Databases      map[string]Record `json:"databases"`
}

// DecryptedView is the plaintext projection of one record.
type DecryptedView struct {
	Name             string
	DBType           database.DBType
	ContainerID      string
	Credentials      database.Credentials
	ConnectionString string
	CreatedAt        time.Time
}

// Vault is an authenticated session over the persisted store. Single
// writer: the mutex serializes check-then-insert sequences; concurrent
// sessions against the same file are out of scope.
type Vault struct {
	mu   sync.Mutex
	path string
	key  []byte
	data file
}

// DefaultPath is the platform config location of the vault file.
func DefaultPath() string {
	return xdg.ConfigPath("dbvault", "vault.json")
}

// Exists reports whether a vault file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RecordCount reports how many records the vault file holds without
// authenticating. Record names and the count are stored in the clear;
// only the credential fields are encrypted.
func RecordCount(path string) (int, error) {
	data, err := load(path)
	if err != nil {
		return 0, err
	}
	return len(data.Databases), nil
}

// Create initializes a brand-new vault at path: fresh random salt, a
// passphrase verification hash, and an empty record map, persisted
// immediately. Fails if a vault already exists there.
func Create(rc *vaultctx.RuntimeContext, path, passphrase string) (*Vault, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if Exists(path) {
		return nil, cerr.Newf("vault already exists at %s", path)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := crypto.VerificationHash(passphrase, salt)
	if err != nil {
		return nil, err
	}
	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	v := &Vault{
		path: path,
		key:  key,
		data: file{
			PassphraseHash: hash,
			Salt:           salt,
			Version:        SchemaVersion,
			Databases:      make(map[string]Record),
		},
	}

	if err := v.persist(); err != nil {
		return nil, err
	}

	logger.Info("Vault created", zap.String("path", path))
	return v, nil
}

// Open loads the persisted vault and authenticates the passphrase against
// the stored verification hash. A missing file, a corrupt file, and a
// wrong passphrase are three distinct failures.
func Open(rc *vaultctx.RuntimeContext, path, passphrase string) (*Vault, error) {
	logger := otelzap.Ctx(rc.Ctx)

	data, err := load(path)
	if err != nil {
		return nil, err
	}

	ok, err := crypto.VerifyPassphrase(passphrase, data.Salt, data.PassphraseHash)
	if err != nil {
		return nil, cerr.Wrap(err, "passphrase verification")
	}
	if !ok {
		return nil, dberr.MarkUserError(dberr.ErrAuthenticationFailed)
	}

	key, err := crypto.DeriveKey(passphrase, data.Salt)
	if err != nil {
		return nil, err
	}

	logger.Info("Vault opened",
		zap.String("path", path),
		zap.Int("records", len(data.Databases)))

	return &Vault{path: path, key: key, data: data}, nil
}

// OpenOrCreate opens the vault at path, creating it first when no file
// exists yet. First-run recovery for the CLI.
func OpenOrCreate(rc *vaultctx.RuntimeContext, path, passphrase string) (*Vault, error) {
	v, err := Open(rc, path, passphrase)
	if cerr.Is(err, dberr.ErrVaultNotFound) {
		if mkErr := xdg.EnsureDir(path); mkErr != nil {
			return nil, cerr.Wrap(mkErr, "creating vault directory")
		}
		return Create(rc, path, passphrase)
	}
	return v, err
}

// Close wipes the in-memory key. The vault handle must not be used after.
func (v *Vault) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	crypto.SecureZero(v.key)
	v.key = nil
}

// Reset deletes the vault file entirely. Irreversible; confirmation is
// the caller's job. Reports a distinct outcome when nothing exists.
func Reset(rc *vaultctx.RuntimeContext, path string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if !Exists(path) {
		logger.Info("No vault file to reset", zap.String("path", path))
		return dberr.NewUserError("no vault file found at %s, nothing to reset", path)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete vault file: %w", err)
	}

	logger.Info("Vault file deleted", zap.String("path", path))
	return nil
}
