// pkg/provision/provision_test.go

package provision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

// fakeEngine is an in-process ContainerEngine for tests. Inspect behavior
// is driven by the inspect func so health-gate scenarios stay explicit.
type fakeEngine struct {
	mu sync.Mutex

	pulledImages   []string
	ensuredVolumes []string
	createdSpecs   []ContainerSpec
	startedIDs     []string
	inspectCalls   int

	imageErr  error
	volumeErr error
	createErr error
	startErr  error

	inspect func(call int) (ContainerState, error)
}

func (f *fakeEngine) EnsureImage(ctx context.Context, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulledImages = append(f.pulledImages, image)
	return f.imageErr
}

func (f *fakeEngine) EnsureVolume(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensuredVolumes = append(f.ensuredVolumes, name)
	return f.volumeErr
}

func (f *fakeEngine) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdSpecs = append(f.createdSpecs, spec)
	return "container-123", nil
}

func (f *fakeEngine) StartContainer(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.startedIDs = append(f.startedIDs, id)
	return nil
}

func (f *fakeEngine) InspectContainer(ctx context.Context, id string) (ContainerState, error) {
	f.mu.Lock()
	call := f.inspectCalls
	f.inspectCalls++
	f.mu.Unlock()
	if f.inspect == nil {
		return ContainerState{Running: true, Health: "healthy"}, nil
	}
	return f.inspect(call)
}

func (f *fakeEngine) inspectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inspectCalls
}

func newTestContext(t *testing.T) *vaultctx.RuntimeContext {
	t.Helper()
	return &vaultctx.RuntimeContext{
		Ctx:        context.Background(),
		Log:        zaptest.NewLogger(t),
		Timestamp:  time.Now(),
		Command:    "test",
		Attributes: make(map[string]string),
	}
}

func fastGate() GateConfig {
	return GateConfig{
		Timeout:  300 * time.Millisecond,
		Grace:    60 * time.Millisecond,
		Interval: 10 * time.Millisecond,
	}
}

var provCreds = database.Credentials{
	Username: "u",
	Password: "p",
	Database: "d",
	Port:     5555,
}

func TestCreateDatabaseSuccess(t *testing.T) {
	engine := &fakeEngine{}
	p := NewProvisioner(engine, fastGate())

	result, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.NoError(t, err)

	assert.Equal(t, "container-123", result.ContainerID)
	assert.Equal(t, "postgresql://u:p@localhost:5555/d", result.ConnectionString)

	assert.Equal(t, []string{"postgres:15"}, engine.pulledImages)
	assert.Equal(t, []string{"mydb_data"}, engine.ensuredVolumes)
	assert.Equal(t, []string{"container-123"}, engine.startedIDs)

	require.Len(t, engine.createdSpecs, 1)
	spec := engine.createdSpecs[0]
	assert.Equal(t, "mydb", spec.Name)
	assert.Equal(t, "postgres:15", spec.Image)
	assert.Equal(t, uint16(5432), spec.ContainerPort)
	assert.Equal(t, uint16(5555), spec.HostPort)
	assert.Contains(t, spec.Env, "POSTGRES_DB=d")
	assert.Contains(t, spec.Env, "POSTGRES_USER=u")
	assert.Contains(t, spec.Env, "POSTGRES_PASSWORD=p")
	assert.Equal(t, []string{"mydb_data:/var/lib/postgresql/data"}, spec.VolumeBinds)
	assert.Equal(t, "pg_isready -U u", spec.HealthCheck)
}

func TestCreateDatabaseImageFailureAborts(t *testing.T) {
	engine := &fakeEngine{imageErr: errors.New("registry unreachable")}
	p := NewProvisioner(engine, fastGate())

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.Error(t, err)
	assert.Empty(t, engine.createdSpecs, "no container may be created after a pull failure")
}

func TestCreateDatabaseCreateFailure(t *testing.T) {
	cause := errors.New("port already allocated")
	engine := &fakeEngine{createErr: cause}
	p := NewProvisioner(engine, fastGate())

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrContainerCreateFailed)
	assert.ErrorIs(t, err, cause, "the engine's cause must stay reachable")
	assert.Empty(t, engine.startedIDs)
}

func TestCreateDatabaseStartFailure(t *testing.T) {
	cause := errors.New("oci runtime error")
	engine := &fakeEngine{startErr: cause}
	p := NewProvisioner(engine, fastGate())

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrContainerStartFailed)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, engine.inspectCount(), "health gate must not run after a start failure")
}

func TestHealthGateHealthyStatusWins(t *testing.T) {
	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			if call < 3 {
				return ContainerState{Running: true, Health: "starting"}, nil
			}
			return ContainerState{Running: true, Health: "healthy"}, nil
		},
	}
	p := NewProvisioner(engine, fastGate())

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, engine.inspectCount(), 4)
}

func TestHealthGateGracePeriodFallback(t *testing.T) {
	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			return ContainerState{Running: true}, nil
		},
	}
	gate := fastGate()
	p := NewProvisioner(engine, gate)

	start := time.Now()
	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Redis, provCreds)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, gate.Grace,
		"success must not be reported before the grace period elapses")
	assert.Less(t, elapsed, gate.Timeout)
}

func TestHealthGateGraceNotAppliedWithExplicitHealthCheck(t *testing.T) {
	// A container that reports a health status never takes the
	// running-state shortcut; it must reach "healthy" or time out.
	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			return ContainerState{Running: true, Health: "starting"}, nil
		},
	}
	p := NewProvisioner(engine, fastGate())

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrHealthCheckTimeout)
}

func TestHealthGateTimeout(t *testing.T) {
	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			return ContainerState{Running: false}, nil
		},
	}
	gate := fastGate()
	p := NewProvisioner(engine, gate)

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Postgres, provCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, dberr.ErrHealthCheckTimeout)

	// Polling must stop after the deadline.
	count := engine.inspectCount()
	time.Sleep(3 * gate.Interval)
	assert.Equal(t, count, engine.inspectCount(), "no polling may continue after timeout")
}

func TestHealthGateRestartResetsGraceClock(t *testing.T) {
	// The container runs, stops, then runs again. The grace clock
	// restarts from the stop, so success comes from the second
	// continuous run rather than the first sample.
	var stoppedAt time.Time
	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			if call == 2 {
				stoppedAt = time.Now()
				return ContainerState{Running: false}, nil
			}
			return ContainerState{Running: true}, nil
		},
	}
	gate := fastGate()
	gate.Timeout = time.Second
	p := NewProvisioner(engine, gate)

	_, err := p.CreateDatabase(newTestContext(t), "mydb", database.Redis, provCreds)
	require.NoError(t, err)
	require.False(t, stoppedAt.IsZero())
	assert.GreaterOrEqual(t, time.Since(stoppedAt), gate.Grace,
		"grace must be measured from the restart, not the first running sample")
}

func TestCreateDatabaseContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rc := newTestContext(t)
	rc.Ctx = ctx

	engine := &fakeEngine{
		inspect: func(call int) (ContainerState, error) {
			if call == 1 {
				cancel()
			}
			return ContainerState{Running: true}, nil
		},
	}
	p := NewProvisioner(engine, GateConfig{
		Timeout:  time.Minute,
		Grace:    time.Minute,
		Interval: 10 * time.Millisecond,
	})

	_, err := p.CreateDatabase(rc, "mydb", database.Redis, provCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
