// pkg/orchestrator/orchestrator.go

// Package orchestrator sequences "provision, then vault-store". It is
// deliberately thin: every provisioning failure aborts before any vault
// mutation, so a half-provisioned container can exist but is never
// referenced by a record.
package orchestrator

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/provision"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

// CreateDatabase provisions a container for the requested database and,
// only on full success, stores the credentials and resolved connection
// string in the vault. On health-gate timeout the container is left
// running for inspection and nothing is stored; the operator cleans it
// up manually.
func CreateDatabase(
	rc *vaultctx.RuntimeContext,
	v *vault.Vault,
	p *provision.Provisioner,
	name string,
	dbType database.DBType,
	creds database.Credentials,
) (vault.Record, error) {
	logger := otelzap.Ctx(rc.Ctx)

	result, err := p.CreateDatabase(rc, name, dbType, creds)
	if err != nil {
		logger.Error("Provisioning failed, vault untouched",
			zap.String("name", name),
			zap.Error(err))
		return vault.Record{}, err
	}

	rec, err := v.AddDatabase(rc, name, dbType, creds, result.ContainerID, result.ConnectionString)
	if err != nil {
		logger.Error("Vault store failed after successful provisioning",
			zap.String("name", name),
			zap.String("container_id", result.ContainerID),
			zap.Error(err))
		return vault.Record{}, err
	}

	return rec, nil
}
