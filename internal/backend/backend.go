// Package backend provides the four issue-count capabilities the collector
// queries, each with a simulated and a live implementation.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

// ErrBadStatus is returned when a live endpoint answers with a non-2xx status
var ErrBadStatus = errors.New("unexpected response status")

// LicensePlateSource counts license plates stuck in a workflow state (on-prem)
type LicensePlateSource interface {
	StuckLicensePlates(ctx context.Context) (int, error)
}

// WaveSource counts waves past their expected age (on-prem)
type WaveSource interface {
	AgingWaves(ctx context.Context) (int, error)
}

// TaskSource counts cloud WMS tasks in the given status
type TaskSource interface {
	CloudStuckTasks(ctx context.Context, status string) (int, error)
}

// ExceptionSource counts Fusion inventory exceptions, capped at limit
type ExceptionSource interface {
	InventoryExceptions(ctx context.Context, limit int) (int, error)
}

// Set bundles one implementation of every capability.
// Which implementation backs each field is decided once, in NewSet.
type Set struct {
	LicensePlates LicensePlateSource
	Waves         WaveSource
	Tasks         TaskSource
	Exceptions    ExceptionSource

	closers []func() error
}

// NewSet selects simulated or live adapters per capability. A capability is
// live only when simulation is off and its endpoint is configured.
func NewSet(cfg *config.Config) (*Set, error) {
	sim := NewSimulator(time.Now().UnixNano(), DefaultBounds())
	set := &Set{
		LicensePlates: sim,
		Waves:         sim,
		Tasks:         sim,
		Exceptions:    sim,
	}

	if cfg.Simulate {
		slog.Info("Backend adapters configured", "mode", "simulated")
		return set, nil
	}

	if cfg.OnPrem.DSN != "" {
		db, err := OpenOnPrem(cfg.OnPrem)
		if err != nil {
			return nil, fmt.Errorf("open on-prem database: %w", err)
		}
		set.LicensePlates = db
		set.Waves = db
		set.closers = append(set.closers, db.Close)
	}

	if cfg.CloudWMS.BaseURL != "" {
		set.Tasks = NewCloudWMSClient(cfg.CloudWMS, cfg.HTTPTimeout)
	}

	if cfg.Fusion.BaseURL != "" {
		set.Exceptions = NewFusionClient(cfg.Fusion, cfg.HTTPTimeout)
	}

	slog.Info("Backend adapters configured",
		"mode", "live",
		"onPremLive", cfg.OnPrem.DSN != "",
		"cloudWMSLive", cfg.CloudWMS.BaseURL != "",
		"fusionLive", cfg.Fusion.BaseURL != "")

	return set, nil
}

// Close releases live connections held by the set
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
