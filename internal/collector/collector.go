// Package collector gathers per-OU issue counts from the backend adapters.
package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/backend"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/registry"
)

// Fixed query parameters for the cloud pair
const (
	CloudTaskStatus      = "STUCK"
	FusionExceptionLimit = 5
)

// IssueTally holds the four counters for one OU. Counters that do not
// apply to the OU's backend are always zero.
type IssueTally struct {
	StuckLPN         int
	AgingWaves       int
	CloudStuckTasks  int
	FusionExceptions int
}

// Total is the sum of all four counters
func (t IssueTally) Total() int {
	return t.StuckLPN + t.AgingWaves + t.CloudStuckTasks + t.FusionExceptions
}

// Result is the collection outcome for one OU
type Result struct {
	OU      string
	Backend registry.BackendKind

	// Label is the backend as written in the registry
	Label string

	Tally IssueTally

	// Err is set when an adapter failed; Tally is then all zero
	Err error
}

// BackendLabel returns the registry label, or the kind when there is none
func (r Result) BackendLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return string(r.Backend)
}

// Collector walks the registry and queries the adapters for each OU
type Collector struct {
	sources *backend.Set
}

// New creates a collector over the given adapter set
func New(sources *backend.Set) *Collector {
	return &Collector{sources: sources}
}

// Collect returns one Result per registry entry, in registry order.
// A failing OU never stops collection of the ones after it.
func (c *Collector) Collect(ctx context.Context, ous *registry.OUMap) []Result {
	entries := ous.Entries()
	results := make([]Result, 0, len(entries))

	for _, entry := range entries {
		results = append(results, c.CollectOU(ctx, entry))
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	slog.Info("Collection completed", "ous", len(results), "failed", failed)

	return results
}

// CollectOU queries the capabilities that apply to one OU's backend
func (c *Collector) CollectOU(ctx context.Context, entry registry.Entry) Result {
	result := Result{OU: entry.Name, Backend: entry.Backend, Label: entry.BackendLabel()}

	var err error
	switch entry.Backend {
	case registry.OnPrem:
		result.Tally, err = c.collectOnPrem(ctx)
	default:
		result.Tally, err = c.collectCloud(ctx)
	}

	if err != nil {
		slog.Error("Collection failed for OU",
			"error", err,
			"ou", entry.Name,
			"backend", entry.Backend)
		metrics.CollectionFailures.WithLabelValues(string(entry.Backend)).Inc()
		result.Tally = IssueTally{}
		result.Err = err
	}

	recordTally(result)
	return result
}

func (c *Collector) collectOnPrem(ctx context.Context) (IssueTally, error) {
	lpn, err := observe("stuck_lpn", func() (int, error) {
		return c.sources.LicensePlates.StuckLicensePlates(ctx)
	})
	if err != nil {
		return IssueTally{}, err
	}

	waves, err := observe("aging_waves", func() (int, error) {
		return c.sources.Waves.AgingWaves(ctx)
	})
	if err != nil {
		return IssueTally{}, err
	}

	return IssueTally{StuckLPN: lpn, AgingWaves: waves}, nil
}

func (c *Collector) collectCloud(ctx context.Context) (IssueTally, error) {
	tasks, err := observe("cloud_stuck_tasks", func() (int, error) {
		return c.sources.Tasks.CloudStuckTasks(ctx, CloudTaskStatus)
	})
	if err != nil {
		return IssueTally{}, err
	}

	exceptions, err := observe("fusion_exceptions", func() (int, error) {
		return c.sources.Exceptions.InventoryExceptions(ctx, FusionExceptionLimit)
	})
	if err != nil {
		return IssueTally{}, err
	}

	return IssueTally{CloudStuckTasks: tasks, FusionExceptions: exceptions}, nil
}

// observe runs one adapter call, counts it, and rejects negative counts
func observe(capability string, call func() (int, error)) (int, error) {
	n, err := call()
	if err == nil && n < 0 {
		err = fmt.Errorf("%s: negative count %d", capability, n)
	}
	if err != nil {
		metrics.AdapterCalls.WithLabelValues(capability, "failed").Inc()
		return 0, fmt.Errorf("%s: %w", capability, err)
	}
	metrics.AdapterCalls.WithLabelValues(capability, "success").Inc()
	return n, nil
}

func recordTally(r Result) {
	backendLabel := string(r.Backend)
	metrics.OUIssues.WithLabelValues(r.OU, backendLabel, "stuck_lpn").Set(float64(r.Tally.StuckLPN))
	metrics.OUIssues.WithLabelValues(r.OU, backendLabel, "aging_waves").Set(float64(r.Tally.AgingWaves))
	metrics.OUIssues.WithLabelValues(r.OU, backendLabel, "cloud_stuck_tasks").Set(float64(r.Tally.CloudStuckTasks))
	metrics.OUIssues.WithLabelValues(r.OU, backendLabel, "fusion_exceptions").Set(float64(r.Tally.FusionExceptions))
	metrics.OUIssues.WithLabelValues(r.OU, backendLabel, "total").Set(float64(r.Tally.Total()))
}
