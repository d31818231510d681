package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/backend"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/registry"
)

// fixedSource returns the same counts on every call and records calls
type fixedSource struct {
	lpn, waves, tasks, exceptions int
	lpnErr, tasksErr              error

	lastStatus string
	lastLimit  int
	calls      int
}

func (f *fixedSource) StuckLicensePlates(ctx context.Context) (int, error) {
	f.calls++
	return f.lpn, f.lpnErr
}

func (f *fixedSource) AgingWaves(ctx context.Context) (int, error) {
	f.calls++
	return f.waves, nil
}

func (f *fixedSource) CloudStuckTasks(ctx context.Context, status string) (int, error) {
	f.calls++
	f.lastStatus = status
	return f.tasks, f.tasksErr
}

func (f *fixedSource) InventoryExceptions(ctx context.Context, limit int) (int, error) {
	f.calls++
	f.lastLimit = limit
	return f.exceptions, nil
}

func setOf(src *fixedSource) *backend.Set {
	return &backend.Set{LicensePlates: src, Waves: src, Tasks: src, Exceptions: src}
}

func TestIssueTally_Total(t *testing.T) {
	tally := IssueTally{StuckLPN: 1, AgingWaves: 2, CloudStuckTasks: 3, FusionExceptions: 4}
	assert.Equal(t, 10, tally.Total())
	assert.Equal(t, 0, IssueTally{}.Total())
}

func TestCollect_PartitionsByBackend(t *testing.T) {
	src := &fixedSource{lpn: 2, waves: 1, tasks: 3, exceptions: 2}
	ous := registry.New(registry.OnPrem,
		registry.Entry{Name: "US_OU", Backend: registry.OnPrem},
		registry.Entry{Name: "EU_OU", Backend: registry.CloudHybrid},
	)

	results := New(setOf(src)).Collect(context.Background(), ous)
	require.Len(t, results, 2)

	onPrem := results[0]
	assert.Equal(t, "US_OU", onPrem.OU)
	assert.Equal(t, IssueTally{StuckLPN: 2, AgingWaves: 1}, onPrem.Tally)
	assert.NoError(t, onPrem.Err)

	cloud := results[1]
	assert.Equal(t, "EU_OU", cloud.OU)
	assert.Equal(t, IssueTally{CloudStuckTasks: 3, FusionExceptions: 2}, cloud.Tally)
	assert.Equal(t, CloudTaskStatus, src.lastStatus)
	assert.Equal(t, FusionExceptionLimit, src.lastLimit)
}

func TestCollect_SimulatedRespectsPartition(t *testing.T) {
	sim := backend.NewSimulator(99, backend.DefaultBounds())
	set := &backend.Set{LicensePlates: sim, Waves: sim, Tasks: sim, Exceptions: sim}

	var entries []registry.Entry
	for i := 0; i < 25; i++ {
		kind := registry.OnPrem
		if i%2 == 1 {
			kind = registry.CloudHybrid
		}
		entries = append(entries, registry.Entry{Name: string(rune('A' + i)), Backend: kind})
	}

	for _, r := range New(set).Collect(context.Background(), registry.New(registry.OnPrem, entries...)) {
		switch r.Backend {
		case registry.OnPrem:
			assert.Zero(t, r.Tally.CloudStuckTasks)
			assert.Zero(t, r.Tally.FusionExceptions)
		case registry.CloudHybrid:
			assert.Zero(t, r.Tally.StuckLPN)
			assert.Zero(t, r.Tally.AgingWaves)
		}
		assert.Equal(t, r.Tally.StuckLPN+r.Tally.AgingWaves+r.Tally.CloudStuckTasks+r.Tally.FusionExceptions, r.Tally.Total())
	}
}

func TestCollect_FailureIsolatedToOU(t *testing.T) {
	src := &fixedSource{lpn: 2, waves: 1, tasks: 3, exceptions: 2, tasksErr: errors.New("connection refused")}
	ous := registry.New(registry.OnPrem,
		registry.Entry{Name: "EU_OU", Backend: registry.CloudHybrid},
		registry.Entry{Name: "US_OU", Backend: registry.OnPrem},
	)

	results := New(setOf(src)).Collect(context.Background(), ous)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "cloud_stuck_tasks")
	assert.Equal(t, IssueTally{}, results[0].Tally)

	assert.NoError(t, results[1].Err)
	assert.Equal(t, 3, results[1].Tally.Total())
}

func TestCollectOU_SecondCapabilityFailureZeroesFirst(t *testing.T) {
	src := &fixedSource{lpn: 2}
	set := setOf(src)
	set.Waves = failingWaves{}

	r := New(set).CollectOU(context.Background(), registry.Entry{Name: "US_OU", Backend: registry.OnPrem})
	assert.Error(t, r.Err)
	assert.Equal(t, IssueTally{}, r.Tally)
}

func TestCollectOU_NegativeCountIsError(t *testing.T) {
	src := &fixedSource{lpn: -1}

	r := New(setOf(src)).CollectOU(context.Background(), registry.Entry{Name: "US_OU", Backend: registry.OnPrem})
	assert.Error(t, r.Err)
	assert.Equal(t, 0, r.Tally.Total())
}

func TestCollect_EmptyRegistry(t *testing.T) {
	src := &fixedSource{}
	results := New(setOf(src)).Collect(context.Background(), registry.Empty())

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, src.calls)
}

type failingWaves struct{}

func (failingWaves) AgingWaves(ctx context.Context) (int, error) {
	return 0, errors.New("ORA-01013: user requested cancel")
}
