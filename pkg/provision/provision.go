// pkg/provision/provision.go

package provision

import (
	"fmt"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

const healthyStatus = "healthy"

// GateConfig tunes the health gate. Defaults mirror the provisioning
// policy this tool has always had: poll every second for up to a minute,
// and treat a container with no explicit health check as healthy once it
// has stayed running past a ten-second grace period.
type GateConfig struct {
	Timeout  time.Duration
	Grace    time.Duration
	Interval time.Duration
}

// DefaultGateConfig returns the stock health-gate policy.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Timeout:  60 * time.Second,
		Grace:    10 * time.Second,
		Interval: time.Second,
	}
}

// Result is what successful provisioning hands to the vault: the engine's
// container identifier and the resolved connection string.
type Result struct {
	ContainerID      string
	ConnectionString string
}

// Provisioner turns a database template plus a credential set into a
// running, health-checked container. One request at a time; the engine
// calls are sequential and there are no retries between states.
type Provisioner struct {
	engine ContainerEngine
	gate   GateConfig
}

// NewProvisioner builds a provisioner over a container engine.
func NewProvisioner(engine ContainerEngine, gate GateConfig) *Provisioner {
	return &Provisioner{engine: engine, gate: gate}
}

// CreateDatabase drives the provisioning sequence: resolve template, pull
// image, ensure volume, create container, start it, wait for health, and
// resolve the connection string. Failures abort the sequence; a container
// that failed only the health gate is left running for inspection.
func (p *Provisioner) CreateDatabase(
	rc *vaultctx.RuntimeContext,
	name string,
	dbType database.DBType,
	creds database.Credentials,
) (Result, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Provisioning database",
		zap.String("name", name),
		zap.String("type", dbType.String()),
		zap.Uint16("host_port", creds.Port))

	tpl, err := database.Resolve(dbType)
	if err != nil {
		return Result{}, err
	}

	if err := p.engine.EnsureImage(rc.Ctx, tpl.Image); err != nil {
		return Result{}, cerr.Wrapf(err, "image %s unavailable", tpl.Image)
	}

	volumeName := name + "_data"
	if err := p.engine.EnsureVolume(rc.Ctx, volumeName); err != nil {
		return Result{}, cerr.Wrapf(err, "volume %s unavailable", volumeName)
	}

	spec := ContainerSpec{
		Name:          name,
		Image:         tpl.Image,
		Env:           database.SubstituteEnv(tpl, name, creds),
		VolumeBinds:   database.SubstituteVolumes(tpl, name, creds),
		ContainerPort: tpl.DefaultPort,
		HostPort:      creds.Port,
		HealthCheck:   database.Substitute(tpl.HealthCheck, name, creds),
	}

	containerID, err := p.engine.CreateContainer(rc.Ctx, spec)
	if err != nil {
		return Result{}, cerr.Mark(cerr.Wrapf(err, "creating container %s", name), dberr.ErrContainerCreateFailed)
	}

	if err := p.engine.StartContainer(rc.Ctx, containerID); err != nil {
		return Result{}, cerr.Mark(cerr.Wrapf(err, "starting container %s", containerID), dberr.ErrContainerStartFailed)
	}

	if err := p.waitForHealth(rc, containerID); err != nil {
		return Result{}, err
	}

	if tpl.ConnectionString == "" {
		return Result{}, fmt.Errorf("%w: %s", dberr.ErrNoConnectionStringTemplate, dbType)
	}
	connString := database.Substitute(tpl.ConnectionString, name, creds)

	logger.Info("Database provisioned",
		zap.String("name", name),
		zap.String("container_id", containerID))

	return Result{ContainerID: containerID, ConnectionString: connString}, nil
}

// waitForHealth polls the container state until it is healthy, until it
// has stayed running past the grace period with no explicit health check,
// or until the wall-clock deadline expires. On timeout the container is
// deliberately not rolled back.
func (p *Provisioner) waitForHealth(rc *vaultctx.RuntimeContext, containerID string) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Waiting for container health",
		zap.String("container_id", containerID),
		zap.Duration("timeout", p.gate.Timeout))

	deadline := time.Now().Add(p.gate.Timeout)
	var runningSince time.Time

	for {
		state, err := p.engine.InspectContainer(rc.Ctx, containerID)
		if err != nil {
			return cerr.Wrapf(err, "inspecting container %s", containerID)
		}

		if state.Health == healthyStatus {
			logger.Info("Container is healthy", zap.String("container_id", containerID))
			return nil
		}

		if state.Health == "" && state.Running {
			if runningSince.IsZero() {
				runningSince = time.Now()
			}
			if time.Since(runningSince) >= p.gate.Grace {
				logger.Info("Container running past grace period, assuming healthy",
					zap.String("container_id", containerID),
					zap.Duration("grace", p.gate.Grace))
				return nil
			}
		} else if !state.Running {
			// A stopped container restarts the grace clock.
			runningSince = time.Time{}
		}

		if time.Now().After(deadline) {
			return cerr.Mark(
				cerr.Newf("container %s not healthy after %s", containerID, p.gate.Timeout),
				dberr.ErrHealthCheckTimeout)
		}

		select {
		case <-rc.Ctx.Done():
			return rc.Ctx.Err()
		case <-time.After(p.gate.Interval):
		}
	}
}
