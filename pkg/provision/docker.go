// pkg/provision/docker.go

package provision

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/go-connections/nat"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DockerEngine implements ContainerEngine against the local Docker daemon
// through the official SDK.
type DockerEngine struct {
	cli *client.Client
}

// NewDockerEngine connects to the daemon using environment configuration
// with API version negotiation enabled.
func NewDockerEngine() (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerEngine{cli: cli}, nil
}

// Close releases the underlying client connection.
func (e *DockerEngine) Close() error {
	return e.cli.Close()
}

// Ping validates connectivity with the Docker daemon.
func (e *DockerEngine) Ping(ctx context.Context) error {
	_, err := e.cli.Ping(ctx)
	return err
}

// pullEvent is one JSON progress line from the image pull stream.
type pullEvent struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Progress       string `json:"progress"`
	ProgressDetail struct {
		Current int64 `json:"current"`
		Total   int64 `json:"total"`
	} `json:"progressDetail"`
}

// EnsureImage pulls the image, draining and logging the progress stream.
// The stream must be consumed fully or the pull is aborted.
func (e *DockerEngine) EnsureImage(ctx context.Context, ref string) error {
	logger := otelzap.Ctx(ctx)
	logger.Info("Pulling image", zap.String("image", ref))

	reader, err := e.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			logger.Warn("Failed to close image pull stream", zap.Error(closeErr))
		}
	}()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		var event pullEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			logger.Warn("Failed to parse pull progress", zap.Error(err))
			continue
		}

		if strings.Contains(strings.ToLower(event.Status), "error") {
			logger.Error("Docker pull error", zap.String("status", event.Status))
			continue
		}

		logger.Debug("Pull progress",
			zap.String("layer", event.ID),
			zap.String("status", event.Status),
			zap.Int64("current", event.ProgressDetail.Current),
			zap.Int64("total", event.ProgressDetail.Total))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading pull progress: %w", err)
	}

	logger.Info("Image pulled", zap.String("image", ref))
	return nil
}

// EnsureVolume creates the named volume. A conflict from the daemon means
// the volume already exists and counts as success.
func (e *DockerEngine) EnsureVolume(ctx context.Context, name string) error {
	logger := otelzap.Ctx(ctx)

	_, err := e.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	if err != nil {
		if errdefs.IsConflict(err) {
			logger.Debug("Volume already exists", zap.String("volume", name))
			return nil
		}
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}

	logger.Info("Volume created", zap.String("volume", name))
	return nil
}

// CreateContainer creates the container with the resolved environment and
// volume binds, publishing the container port on 127.0.0.1:<host port>
// with an unless-stopped restart policy.
func (e *DockerEngine) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	logger := otelzap.Ctx(ctx)

	port, err := nat.NewPort("tcp", fmt.Sprintf("%d", spec.ContainerPort))
	if err != nil {
		return "", fmt.Errorf("invalid container port %d: %w", spec.ContainerPort, err)
	}

	config := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	if spec.HealthCheck != "" {
		config.Healthcheck = &container.HealthConfig{
			Test:     []string{"CMD-SHELL", spec.HealthCheck},
			Interval: 5 * time.Second,
			Timeout:  3 * time.Second,
			Retries:  5,
		}
	}
	hostConfig := &container.HostConfig{
		Binds: spec.VolumeBinds,
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: fmt.Sprintf("%d", spec.HostPort)},
			},
		},
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
	}

	resp, err := e.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return "", err
	}

	logger.Info("Container created",
		zap.String("name", spec.Name),
		zap.String("container_id", resp.ID))
	return resp.ID, nil
}

// StartContainer starts a created container.
func (e *DockerEngine) StartContainer(ctx context.Context, id string) error {
	return e.cli.ContainerStart(ctx, id, container.StartOptions{})
}

// InspectContainer reports running state and, when the image defines a
// health check, the daemon's health status string.
func (e *DockerEngine) InspectContainer(ctx context.Context, id string) (ContainerState, error) {
	info, err := e.cli.ContainerInspect(ctx, id)
	if err != nil {
		return ContainerState{}, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	state := ContainerState{}
	if info.State != nil {
		state.Running = info.State.Running
		if info.State.Health != nil {
			state.Health = info.State.Health.Status
		}
	}
	return state, nil
}
