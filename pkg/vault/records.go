// pkg/vault/records.go

package vault

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/crypto"
	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

// AddDatabase encrypts and stores the outputs of a successful
// provisioning run under a unique name, then persists the whole vault.
// It never provisions anything itself. The lock covers the whole
// check-then-insert sequence so two concurrent creates for the same name
// cannot both pass the uniqueness check.
func (v *Vault) AddDatabase(
	rc *vaultctx.RuntimeContext,
	name string,
	dbType database.DBType,
	creds database.Credentials,
	containerID string,
	connectionString string,
) (Record, error) {
	logger := otelzap.Ctx(rc.Ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.data.Databases[name]; exists {
		return Record{}, dberr.MarkUserError(fmt.Errorf("%w: %q", dberr.ErrDuplicateName, name))
	}

	credPlain, err := json.Marshal(creds)
	if err != nil {
		return Record{}, cerr.Mark(cerr.Wrap(err, "serializing credentials"), dberr.ErrSerializationFailed)
	}
	defer crypto.SecureZero(credPlain)

	credBlob, credNonce, err := crypto.Encrypt(v.key, credPlain)
	if err != nil {
		return Record{}, cerr.Wrap(err, "encrypting credentials")
	}
	connBlob, connNonce, err := crypto.Encrypt(v.key, []byte(connectionString))
	if err != nil {
		return Record{}, cerr.Wrap(err, "encrypting connection string")
	}

	rec := Record{
		Name:                      name,
		DBType:                    dbType,
		ContainerID:               containerID,
		EncryptedCredentials:      credBlob,
		Nonce:                     credNonce,
		EncryptedConnectionString: connBlob,
		ConnectionNonce:           connNonce,
		CreatedAt:                 time.Now().UTC(),
	}

	v.data.Databases[name] = rec
	if err := v.persist(); err != nil {
		delete(v.data.Databases, name)
		return Record{}, err
	}

	logger.Info("Database record stored",
		zap.String("name", name),
		zap.String("type", dbType.String()),
		zap.String("container_id", containerID))
	return rec, nil
}

// Get decrypts one record into its plaintext view. Either both fields
// decrypt or the call fails; there is no partial result.
func (v *Vault) Get(rc *vaultctx.RuntimeContext, name string) (DecryptedView, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.getLocked(name)
}

func (v *Vault) getLocked(name string) (DecryptedView, error) {
	rec, ok := v.data.Databases[name]
	if !ok {
		return DecryptedView{}, dberr.MarkUserError(fmt.Errorf("%w: %q", dberr.ErrNotFound, name))
	}

	credPlain, err := crypto.Decrypt(v.key, rec.EncryptedCredentials, rec.Nonce)
	if err != nil {
		return DecryptedView{}, cerr.Wrapf(err, "record %q credentials", name)
	}
	defer crypto.SecureZero(credPlain)

	var creds database.Credentials
	if err := json.Unmarshal(credPlain, &creds); err != nil {
		return DecryptedView{}, cerr.Mark(cerr.Wrapf(err, "record %q credentials", name), dberr.ErrSerializationFailed)
	}

	connPlain, err := crypto.Decrypt(v.key, rec.EncryptedConnectionString, rec.ConnectionNonce)
	if err != nil {
		return DecryptedView{}, cerr.Wrapf(err, "record %q connection string", name)
	}

	return DecryptedView{
		Name:             rec.Name,
		DBType:           rec.DBType,
		ContainerID:      rec.ContainerID,
		Credentials:      creds,
		ConnectionString: string(connPlain),
		CreatedAt:        rec.CreatedAt,
	}, nil
}

// ListNames returns the sorted record names. No decryption.
func (v *Vault) ListNames() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.data.Databases))
	for name := range v.data.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes a record and persists. ErrNotFound when absent.
func (v *Vault) Delete(rc *vaultctx.RuntimeContext, name string) error {
	logger := otelzap.Ctx(rc.Ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.data.Databases[name]
	if !ok {
		return dberr.MarkUserError(fmt.Errorf("%w: %q", dberr.ErrNotFound, name))
	}

	delete(v.data.Databases, name)
	if err := v.persist(); err != nil {
		v.data.Databases[name] = rec
		return err
	}

	logger.Info("Database record deleted", zap.String("name", name))
	return nil
}

// ListAllDecrypted decrypts every record, sorted by name. Fail-fast: any
// single decryption failure aborts the whole call.
func (v *Vault) ListAllDecrypted(rc *vaultctx.RuntimeContext) ([]DecryptedView, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.data.Databases))
	for name := range v.data.Databases {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]DecryptedView, 0, len(names))
	for _, name := range names {
		view, err := v.getLocked(name)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
