// pkg/provision/engine.go

package provision

import (
	"context"
)

// ContainerSpec is everything the engine needs to create one container:
// resolved environment, volume binds, the single published port, and an
// optional in-container health probe.
type ContainerSpec struct {
	Name          string
	Image         string
	Env           []string
	VolumeBinds   []string
	ContainerPort uint16
	HostPort      uint16

	// HealthCheck is the probe shell command, empty when the container
	// relies on the running-state fallback.
	HealthCheck string
}

// ContainerState is the subset of inspect output the health gate reads.
// Health is empty when the image configures no health check.
type ContainerState struct {
	Running bool
	Health  string
}

// ContainerEngine is the capability interface the provisioner drives.
// The core is agnostic to which concrete engine client implements it;
// production uses the Docker SDK, tests use an in-process fake.
type ContainerEngine interface {
	// EnsureImage makes the image available locally, pulling if needed.
	// Streamed pull progress is observational only.
	EnsureImage(ctx context.Context, image string) error

	// EnsureVolume creates a named volume; an already-existing volume is
	// success, not failure.
	EnsureVolume(ctx context.Context, name string) error

	// CreateContainer creates (but does not start) a container and returns
	// its engine identifier.
	CreateContainer(ctx context.Context, spec ContainerSpec) (string, error)

	// StartContainer starts a previously created container.
	StartContainer(ctx context.Context, id string) error

	// InspectContainer reports the container's running and health state.
	InspectContainer(ctx context.Context, id string) (ContainerState, error)
}
