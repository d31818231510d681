package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Collection metrics

	// OUIssues tracks the latest issue counts per OU and issue type
	OUIssues = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wms_monitor",
			Subsystem: "ou",
			Name:      "issues",
			Help:      "Issue count observed for an OU in the last run",
		},
		[]string{"ou", "backend", "issue_type"}, // issue_type: stuck_lpn, aging_waves, cloud_stuck_tasks, fusion_exceptions, total
	)

	// AdapterCalls tracks backend adapter calls by capability and result
	AdapterCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "adapter",
			Name:      "calls_total",
			Help:      "Backend adapter calls",
		},
		[]string{"capability", "result"}, // result: success, failed
	)

	// CollectionFailures tracks OUs whose collection step failed
	CollectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "collector",
			Name:      "ou_failures_total",
			Help:      "OUs whose collection failed and were reported with zero counts",
		},
		[]string{"backend"},
	)

	// AdapterCircuitBreakerState tracks live endpoint breaker state
	AdapterCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wms_monitor",
			Subsystem: "adapter",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"endpoint"},
	)

	// AdapterCircuitBreakerTrips tracks breaker trips
	AdapterCircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "adapter",
			Name:      "circuit_breaker_trips_total",
			Help:      "Times a live endpoint breaker opened",
		},
		[]string{"endpoint"},
	)

	// Incident metrics

	// IncidentsFiled tracks incident filing attempts
	IncidentsFiled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "incident",
			Name:      "filed_total",
			Help:      "Incident filing attempts",
		},
		[]string{"mode", "result"}, // mode: mock, servicenow; result: created, degraded, failed
	)

	// Dispatch metrics

	// SinkDeliveries tracks notification sink outcomes
	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "dispatch",
			Name:      "deliveries_total",
			Help:      "Notification sink outcomes",
		},
		[]string{"sink", "result"}, // result: sent, failed, skipped
	)

	// Run metrics

	// RunDuration tracks how long the last run took
	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wms_monitor",
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall time of the last run",
		},
	)

	// RunRows tracks how many rows the last run reported
	RunRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wms_monitor",
			Subsystem: "run",
			Name:      "rows",
			Help:      "Rows in the last report",
		},
	)

	// RunLastSuccess is the unix time of the last run that persisted its report
	RunLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wms_monitor",
			Subsystem: "run",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last persisted run",
		},
	)
)

// CircuitBreakerState constants
const (
	CircuitBreakerClosed   = 0
	CircuitBreakerOpen     = 1
	CircuitBreakerHalfOpen = 2
)

// Push sends every registered metric to a Pushgateway under job.
// A batch job exits before any scrape, so push is the only way out.
func Push(ctx context.Context, url, job string) error {
	return PushFrom(ctx, prometheus.DefaultGatherer, url, job)
}

// PushFrom pushes the metrics of gatherer to a Pushgateway under job
func PushFrom(ctx context.Context, gatherer prometheus.Gatherer, url, job string) error {
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
