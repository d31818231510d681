// Package pipeline runs one monitoring cycle end to end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/backend"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/collector"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/incident"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/notification"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/registry"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/store"
)

// Config wires the components of a run
type Config struct {
	Registry   *registry.OUMap
	Sources    *backend.Set
	Filer      incident.Filer
	Dispatcher *notification.Dispatcher

	SnapshotPath string
	HistoryPath  string

	// RunTime fixes the run's timestamp; zero means now
	RunTime time.Time
}

// Result is what a completed run produced
type Result struct {
	RunID           string
	Report          *report.Report
	HistoryAppended bool
	Outcomes        []notification.Outcome
	Duration        time.Duration
}

// Pipeline executes collect, file, assemble, persist and dispatch in order
type Pipeline struct {
	cfg       Config
	collector *collector.Collector
	now       func() time.Time
}

// New creates a pipeline
func New(cfg Config) *Pipeline {
	if cfg.Registry == nil {
		cfg.Registry = registry.Empty()
	}
	return &Pipeline{
		cfg:       cfg,
		collector: collector.New(cfg.Sources),
		now:       time.Now,
	}
}

// Run performs one cycle. Only a persistence failure is returned as an
// error; collection, filing and dispatch failures are recorded in the report
// and outcomes. Dispatch happens only after both files are written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	runAt := p.cfg.RunTime
	if runAt.IsZero() {
		runAt = p.now()
	}
	runTime := report.FormatRunTime(runAt)
	runID := uuid.NewString()

	slog.Info("Run started",
		"runId", runID,
		"runTime", runTime,
		"ous", p.cfg.Registry.Len())

	results := p.collector.Collect(ctx, p.cfg.Registry)
	outcomes := p.fileIncidents(ctx, runTime, results)
	rep := report.Assemble(runTime, outcomes)

	if err := store.WriteSnapshot(p.cfg.SnapshotPath, rep.Rows); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	appended, err := store.AppendHistory(p.cfg.HistoryPath, rep)
	if err != nil {
		return nil, fmt.Errorf("persist history: %w", err)
	}
	metrics.RunLastSuccess.SetToCurrentTime()

	var sinkOutcomes []notification.Outcome
	if p.cfg.Dispatcher != nil {
		sinkOutcomes = p.cfg.Dispatcher.Dispatch(ctx, notification.NewSummary(runID, rep))
	}

	duration := time.Since(start)
	metrics.RunDuration.Set(duration.Seconds())
	metrics.RunRows.Set(float64(len(rep.Rows)))

	slog.Info("Run completed",
		"runId", runID,
		"runTime", runTime,
		"rows", len(rep.Rows),
		"totalIssues", rep.TotalIssues(),
		"historyAppended", appended,
		"duration", duration)

	return &Result{
		RunID:           runID,
		Report:          rep,
		HistoryAppended: appended,
		Outcomes:        sinkOutcomes,
		Duration:        duration,
	}, nil
}

// fileIncidents files one ticket for every OU with issues, in registry order
func (p *Pipeline) fileIncidents(ctx context.Context, runTime string, results []collector.Result) []report.OUOutcome {
	outcomes := make([]report.OUOutcome, 0, len(results))
	for _, r := range results {
		outcome := report.OUOutcome{Result: r}
		if r.Tally.Total() > 0 && p.cfg.Filer != nil {
			ticket := incident.NewTicket(r.OU, r.BackendLabel(), runTime, r.Tally)
			outcome.Incident = p.cfg.Filer.File(ctx, ticket).Ref
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
