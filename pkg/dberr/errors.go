// pkg/dberr/errors.go

package dberr

import (
	cerr "github.com/cockroachdb/errors"
)

// Sentinel errors for the vault and provisioning surface. Callers match
// with errors.Is; wrapped causes stay reachable through errors.Unwrap.
var (
	// ErrAuthenticationFailed means the supplied passphrase does not match
	// the stored verification hash. Distinct from a missing or corrupt file.
	ErrAuthenticationFailed = cerr.New("authentication failed: wrong passphrase")

	// ErrVaultNotFound means no vault file exists yet. The CLI recovers by
	// creating a fresh vault, so this is an expected condition on first run.
	ErrVaultNotFound = cerr.New("vault file not found")

	// ErrDuplicateName means a record with the requested name already exists.
	ErrDuplicateName = cerr.New("a database with that name already exists")

	// ErrNotFound means no record exists under the requested name.
	ErrNotFound = cerr.New("database not found")

	// ErrUnsupportedType means the database type string does not map to a
	// registered template.
	ErrUnsupportedType = cerr.New("unsupported database type")

	// ErrContainerCreateFailed wraps the engine-reported cause of a failed
	// container creation.
	ErrContainerCreateFailed = cerr.New("container create failed")

	// ErrContainerStartFailed wraps the engine-reported cause of a failed
	// container start.
	ErrContainerStartFailed = cerr.New("container start failed")

	// ErrHealthCheckTimeout means the container did not reach a healthy or
	// stably-running state before the deadline. The container is left
	// running for inspection.
	ErrHealthCheckTimeout = cerr.New("container failed to become healthy before the deadline")

	// ErrNoConnectionStringTemplate means the resolved template defines no
	// connection-string pattern.
	ErrNoConnectionStringTemplate = cerr.New("database type defines no connection string template")

	// ErrDecryptionFailed means an encrypted field could not be opened:
	// tampered ciphertext, wrong key, or a nonce/ciphertext mismatch.
	ErrDecryptionFailed = cerr.New("decryption failed")

	// ErrSerializationFailed means the persisted vault file could not be
	// parsed or written.
	ErrSerializationFailed = cerr.New("vault serialization failed")
)
